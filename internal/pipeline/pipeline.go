// Package pipeline sequences the mapping stages: load boundaries and
// raster, aggregate population per region, optionally distort into a
// cartogram, and render the choropleth.
package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridpop/popmap/internal/cartogram"
	"github.com/gridpop/popmap/internal/config"
	"github.com/gridpop/popmap/internal/render"
	"github.com/gridpop/popmap/internal/spatial"
	"github.com/gridpop/popmap/internal/zonal"
)

// Summary reports what a run produced.
type Summary struct {
	RunID         string
	Regions       int
	ZeroFilled    int
	MinPopulation float64
	MaxPopulation float64
	Cartogram     bool
	Output        string
	Duration      time.Duration
}

// Loader abstracts the data-loading stage so runs can be tested without
// GDAL or real files on disk.
type Loader func(ctx context.Context, cfg *config.Config) (spatial.RegionSet, *spatial.Raster, error)

// Pipeline runs the map-production stages in order.
type Pipeline struct {
	cfg  *config.Config
	load Loader
}

// New creates a Pipeline using the standard shapefile and GeoTIFF loader.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg, load: func(ctx context.Context, cfg *config.Config) (spatial.RegionSet, *spatial.Raster, error) {
		return spatial.Load(cfg)
	}}
}

// NewWithLoader creates a Pipeline with a custom loading stage.
func NewWithLoader(cfg *config.Config, load Loader) *Pipeline {
	return &Pipeline{cfg: cfg, load: load}
}

// Run executes load, aggregate, optional cartogram, and render, writing
// the output image configured in cfg.Map.Output.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))
	start := time.Now()

	log.Info("pipeline: starting map run",
		zap.String("shapefile", p.cfg.Data.Shapefile),
		zap.String("raster", p.cfg.Data.Raster),
		zap.Bool("cartogram", p.cfg.Map.Cartogram),
	)

	regions, raster, err := p.load(ctx, p.cfg)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load inputs")
	}
	log.Info("pipeline: inputs loaded",
		zap.Int("regions", len(regions)),
		zap.Int("raster_width", raster.Width),
		zap.Int("raster_height", raster.Height),
	)

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: canceled")
	}

	regions, zeroFilled, err := zonal.Aggregate(regions, raster)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: aggregate population")
	}
	if zeroFilled > 0 {
		log.Warn("pipeline: regions without raster coverage were zero-filled",
			zap.Int("count", zeroFilled),
		)
	}

	minPop, maxPop, ok := regions.PopulationRange()
	if !ok {
		return nil, eris.New("pipeline: aggregation produced no populated regions")
	}
	log.Info("pipeline: population aggregated",
		zap.Float64("min", math.Round(minPop)),
		zap.Float64("max", math.Round(maxPop)),
	)

	if p.cfg.Map.Cartogram {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "pipeline: canceled")
		}
		regions, err = cartogram.Transform(regions, p.cfg.Map.CartogramIterations)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: cartogram transform")
		}
		log.Info("pipeline: cartogram applied",
			zap.Int("iterations", p.cfg.Map.CartogramIterations),
		)
	}

	opts := render.Options{
		WidthInches:  p.cfg.Map.WidthInches,
		HeightInches: p.cfg.Map.HeightInches,
		DPI:          p.cfg.Map.DPI,
	}
	if err := render.Render(regions, p.cfg.Map.Output, opts); err != nil {
		return nil, eris.Wrap(err, "pipeline: render map")
	}

	summary := &Summary{
		RunID:         runID,
		Regions:       len(regions),
		ZeroFilled:    zeroFilled,
		MinPopulation: minPop,
		MaxPopulation: maxPop,
		Cartogram:     p.cfg.Map.Cartogram,
		Output:        p.cfg.Map.Output,
		Duration:      time.Since(start),
	}
	log.Info("pipeline: run complete",
		zap.String("output", summary.Output),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}
