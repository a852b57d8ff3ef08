package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"render":  false,
		"export":  false,
		"catalog": false,
		"tiles":   false,
		"config":  false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		assert.True(t, found, "command %s not registered", name)
	}
}

func TestCatalogSearchRequiresPhrase(t *testing.T) {
	require.NotNil(t, catalogSearchCmd.Args)
	err := catalogSearchCmd.Args(catalogSearchCmd, nil)
	assert.Error(t, err)
	assert.NoError(t, catalogSearchCmd.Args(catalogSearchCmd, []string{"gridded", "population"}))
}

func TestTilesScanRequiresDir(t *testing.T) {
	require.NotNil(t, tilesScanCmd.Args)
	assert.Error(t, tilesScanCmd.Args(tilesScanCmd, nil))
	assert.NoError(t, tilesScanCmd.Args(tilesScanCmd, []string{"tiles"}))
}
