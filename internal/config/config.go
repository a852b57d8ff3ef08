// Package config loads the popmap configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is built once at
// startup and treated as read-only by every pipeline stage.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Map     MapConfig     `yaml:"map" mapstructure:"map"`
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the input archive, shapefile, and population raster.
type DataConfig struct {
	BaseDir    string `yaml:"base_dir" mapstructure:"base_dir"`
	ZipFile    string `yaml:"zip_file" mapstructure:"zip_file"`
	ExtractDir string `yaml:"extract_dir" mapstructure:"extract_dir"`
	Shapefile  string `yaml:"shapefile" mapstructure:"shapefile"`
	Raster     string `yaml:"raster" mapstructure:"raster"`
}

// MapConfig controls projection, cartogram distortion, and PNG output.
type MapConfig struct {
	Output              string  `yaml:"output" mapstructure:"output"`
	TargetCRS           int     `yaml:"target_crs" mapstructure:"target_crs"`
	Cartogram           bool    `yaml:"cartogram" mapstructure:"cartogram"`
	CartogramIterations int     `yaml:"cartogram_iterations" mapstructure:"cartogram_iterations"`
	WidthInches         float64 `yaml:"width_inches" mapstructure:"width_inches"`
	HeightInches        float64 `yaml:"height_inches" mapstructure:"height_inches"`
	DPI                 float64 `yaml:"dpi" mapstructure:"dpi"`
}

// CatalogConfig configures the WorldPop catalogue query.
type CatalogConfig struct {
	URL  string `yaml:"url" mapstructure:"url"`
	File string `yaml:"file" mapstructure:"file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("POPMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range Defaults() {
		v.SetDefault(key, val)
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Defaults returns the default configuration values keyed by viper path.
// Zambia UTM zone 35S is the default projection; WorldPop ships its
// national mosaics in EPSG:4326, so everything is reprojected on load.
func Defaults() map[string]any {
	return map[string]any{
		"data.base_dir":            "data",
		"data.zip_file":            "zmb_adm_boundaries.zip",
		"data.extract_dir":         "shapefiles",
		"data.shapefile":           "zmb_admbnda_adm1.shp",
		"data.raster":              "zmb_ppp_2020.tif",
		"map.output":               "zambia_population.png",
		"map.target_crs":           32735,
		"map.cartogram":            false,
		"map.cartogram_iterations": 10,
		"map.width_inches":         8.0,
		"map.height_inches":        5.0,
		"map.dpi":                  300.0,
		"catalog.url":              "https://hub.worldpop.org/rest/data",
		"log.level":                "info",
		"log.format":               "console",
	}
}

// Validate checks that the configuration is usable for the render pipeline.
// Path existence is deliberately not checked here; the extractor and loader
// report missing files with the specific path at the point of use.
func (c *Config) Validate() error {
	var problems []string
	if c.Data.BaseDir == "" {
		problems = append(problems, "data.base_dir is required")
	}
	if c.Data.Shapefile == "" {
		problems = append(problems, "data.shapefile is required")
	}
	if c.Data.Raster == "" {
		problems = append(problems, "data.raster is required")
	}
	if c.Map.Output == "" {
		problems = append(problems, "map.output is required")
	}
	if c.Map.TargetCRS <= 0 {
		problems = append(problems, "map.target_crs must be a positive EPSG code")
	}
	if c.Map.CartogramIterations < 1 || c.Map.CartogramIterations > 100 {
		problems = append(problems, "map.cartogram_iterations must be between 1 and 100")
	}
	if c.Map.WidthInches <= 0 || c.Map.HeightInches <= 0 || c.Map.DPI <= 0 {
		problems = append(problems, "map canvas dimensions and dpi must be > 0")
	}
	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
