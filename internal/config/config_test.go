package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Data.BaseDir)
	assert.Equal(t, "zmb_adm_boundaries.zip", cfg.Data.ZipFile)
	assert.Equal(t, "shapefiles", cfg.Data.ExtractDir)
	assert.Equal(t, "zmb_admbnda_adm1.shp", cfg.Data.Shapefile)
	assert.Equal(t, "zmb_ppp_2020.tif", cfg.Data.Raster)
	assert.Equal(t, "zambia_population.png", cfg.Map.Output)
	assert.Equal(t, 32735, cfg.Map.TargetCRS)
	assert.False(t, cfg.Map.Cartogram)
	assert.Equal(t, 10, cfg.Map.CartogramIterations)
	assert.InDelta(t, 8.0, cfg.Map.WidthInches, 0.001)
	assert.InDelta(t, 5.0, cfg.Map.HeightInches, 0.001)
	assert.InDelta(t, 300.0, cfg.Map.DPI, 0.001)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
data:
  base_dir: /srv/worldpop
  raster: zmb_ppp_2025.tif
map:
  cartogram: true
  target_crs: 32736
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/worldpop", cfg.Data.BaseDir)
	assert.Equal(t, "zmb_ppp_2025.tif", cfg.Data.Raster)
	assert.True(t, cfg.Map.Cartogram)
	assert.Equal(t, 32736, cfg.Map.TargetCRS)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, "shapefiles", cfg.Data.ExtractDir)
	assert.Equal(t, 10, cfg.Map.CartogramIterations)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
map:
  output: from_file.png
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("POPMAP_MAP_OUTPUT", "from_env.png")
	t.Setenv("POPMAP_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "from_env.png", cfg.Map.Output)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func validConfig() *Config {
	return &Config{
		Data: DataConfig{
			BaseDir:    "data",
			ZipFile:    "zmb.zip",
			ExtractDir: "shapefiles",
			Shapefile:  "zmb_admbnda_adm1.shp",
			Raster:     "zmb_ppp_2020.tif",
		},
		Map: MapConfig{
			Output:              "out.png",
			TargetCRS:           32735,
			CartogramIterations: 10,
			WidthInches:         8,
			HeightInches:        5,
			DPI:                 300,
		},
	}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateMissingPaths(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BaseDir = ""
	cfg.Data.Raster = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.base_dir is required")
	assert.Contains(t, err.Error(), "data.raster is required")
}

func TestValidateBadCRS(t *testing.T) {
	cfg := validConfig()
	cfg.Map.TargetCRS = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_crs")
}

func TestValidateIterationBounds(t *testing.T) {
	cfg := validConfig()

	cfg.Map.CartogramIterations = 0
	assert.Error(t, cfg.Validate())

	cfg.Map.CartogramIterations = 101
	assert.Error(t, cfg.Validate())

	cfg.Map.CartogramIterations = 100
	assert.NoError(t, cfg.Validate())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
