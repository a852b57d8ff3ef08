package spatial

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/gridpop/popmap/internal/config"
	"github.com/gridpop/popmap/internal/extract"
)

var registerOnce sync.Once

// registerDrivers registers the GDAL drivers exactly once per process.
func registerDrivers() {
	registerOnce.Do(godal.RegisterAll)
}

// Load produces the administrative boundary collection and the prepared
// population raster, both in the target CRS. The raster is cropped to the
// boundary extent in its native CRS before reprojection so a continental
// source raster never has to be warped whole.
func Load(cfg *config.Config) (RegionSet, *Raster, error) {
	registerDrivers()
	log := zap.L().With(zap.String("component", "spatial.load"))

	shpPath, err := extract.EnsureShapefile(cfg)
	if err != nil {
		return nil, nil, err
	}

	regions, err := ReadBoundaries(shpPath)
	if err != nil {
		return nil, nil, err
	}
	log.Info("boundaries loaded", zap.Int("regions", len(regions)))

	rasterPath := filepath.Join(cfg.Data.BaseDir, cfg.Data.Raster)
	if _, err := os.Stat(rasterPath); err != nil {
		return nil, nil, eris.Wrapf(extract.ErrMissingInput, "spatial: population raster %s not found", rasterPath)
	}

	boundarySRS, err := shapefileSRS(shpPath)
	if err != nil {
		return nil, nil, err
	}
	defer boundarySRS.Close()

	targetSRS, err := godal.NewSpatialRefFromEPSG(cfg.Map.TargetCRS)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "spatial: target CRS EPSG:%d", cfg.Map.TargetCRS)
	}
	defer targetSRS.Close()

	raster, err := prepareRaster(rasterPath, regions, boundarySRS, cfg.Map.TargetCRS)
	if err != nil {
		return nil, nil, err
	}
	log.Info("raster prepared",
		zap.Int("width", raster.Width),
		zap.Int("height", raster.Height),
		zap.Int("target_crs", cfg.Map.TargetCRS),
	)

	if err := reprojectRegions(regions, boundarySRS, targetSRS); err != nil {
		return nil, nil, err
	}

	return regions, raster, nil
}

// shapefileSRS reads the CRS from the shapefile's .prj sidecar. Boundary
// products without one are assumed to be EPSG:4326, which is what GADM,
// COD-AB and geoBoundaries all ship.
func shapefileSRS(shpPath string) (*godal.SpatialRef, error) {
	prjPath := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".prj"
	wkt, err := os.ReadFile(prjPath)
	if err != nil {
		zap.L().Debug("spatial: no .prj sidecar, assuming EPSG:4326", zap.String("shapefile", shpPath))
		sr, srErr := godal.NewSpatialRefFromEPSG(4326)
		if srErr != nil {
			return nil, eris.Wrap(srErr, "spatial: default boundary CRS")
		}
		return sr, nil
	}

	sr, err := godal.NewSpatialRefFromWKT(string(wkt))
	if err != nil {
		return nil, eris.Wrapf(err, "spatial: parse %s", prjPath)
	}
	return sr, nil
}

// prepareRaster crops the population raster to the boundary extent in the
// raster's native CRS, reprojects it to the target CRS with bilinear
// resampling, and reads band 1 into memory.
func prepareRaster(path string, regions RegionSet, boundarySRS *godal.SpatialRef, targetEPSG int) (*Raster, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "spatial: open raster %s", path)
	}
	defer ds.Close() //nolint:errcheck

	rasterSRS := ds.SpatialRef()
	minX, minY, maxX, maxY, err := boundsInSRS(regions, boundarySRS, rasterSRS)
	if err != nil {
		return nil, err
	}

	// One-cell margin so boundary-straddling cells survive the crop.
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, eris.Wrap(err, "spatial: raster geotransform")
	}
	mx, my := abs(gt[1]), abs(gt[5])
	minX, minY, maxX, maxY = minX-mx, minY-my, maxX+mx, maxY+my

	cropped, err := ds.Translate("", []string{
		"-of", "MEM",
		"-projwin",
		formatCoord(minX), formatCoord(maxY), formatCoord(maxX), formatCoord(minY),
	})
	if err != nil {
		return nil, eris.Wrap(err, "spatial: crop raster to boundary extent")
	}
	defer cropped.Close() //nolint:errcheck

	// Bilinear: the grid holds continuous population counts, not classes.
	warped, err := cropped.Warp("", []string{
		"-of", "MEM",
		"-t_srs", "EPSG:" + strconv.Itoa(targetEPSG),
		"-r", "bilinear",
	})
	if err != nil {
		return nil, eris.Wrapf(err, "spatial: reproject raster to EPSG:%d", targetEPSG)
	}
	defer warped.Close() //nolint:errcheck

	return readBand(warped)
}

// readBand reads band 1 of a dataset into a Raster.
func readBand(ds *godal.Dataset) (*Raster, error) {
	st := ds.Structure()
	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, eris.New("spatial: raster has no bands")
	}
	band := bands[0]

	data := make([]float64, st.SizeX*st.SizeY)
	if err := band.Read(0, 0, data, st.SizeX, st.SizeY); err != nil {
		return nil, eris.Wrap(err, "spatial: read raster band")
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, eris.Wrap(err, "spatial: warped geotransform")
	}
	if gt[2] != 0 || gt[4] != 0 {
		return nil, eris.New("spatial: rotated rasters are not supported")
	}

	r := &Raster{
		Data:         data,
		Width:        st.SizeX,
		Height:       st.SizeY,
		GeoTransform: gt,
	}
	if nodata, ok := band.NoData(); ok {
		r.NoData = nodata
		r.HasNoData = true
	}
	return r, nil
}

// boundsInSRS computes the bounding box of all regions expressed in dst.
func boundsInSRS(regions RegionSet, src, dst *godal.SpatialRef) (minX, minY, maxX, maxY float64, err error) {
	minX, minY, maxX, maxY, ok := regions.Bounds()
	if !ok {
		return 0, 0, 0, 0, eris.New("spatial: boundary collection is empty")
	}

	trn, err := godal.NewTransform(src, dst)
	if err != nil {
		return 0, 0, 0, 0, eris.Wrap(err, "spatial: boundary to raster CRS transform")
	}
	defer trn.Close()

	// Transforming only the corners is not enough for curved projections;
	// densify the box edges before transforming.
	xs, ys := densifyBox(minX, minY, maxX, maxY, 21)
	if err := trn.TransformEx(xs, ys, nil, nil); err != nil {
		return 0, 0, 0, 0, eris.Wrap(err, "spatial: transform boundary extent")
	}

	minX, minY, maxX, maxY = xs[0], ys[0], xs[0], ys[0]
	for i := range xs {
		if xs[i] < minX {
			minX = xs[i]
		}
		if xs[i] > maxX {
			maxX = xs[i]
		}
		if ys[i] < minY {
			minY = ys[i]
		}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}
	return minX, minY, maxX, maxY, nil
}

// densifyBox samples n points along each edge of a bounding box.
func densifyBox(minX, minY, maxX, maxY float64, n int) (xs, ys []float64) {
	xs = make([]float64, 0, 4*n)
	ys = make([]float64, 0, 4*n)
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		x := minX + f*(maxX-minX)
		y := minY + f*(maxY-minY)
		xs = append(xs, x, x, minX, maxX)
		ys = append(ys, minY, maxY, y, y)
	}
	return xs, ys
}

// reprojectRegions transforms every region geometry from src to dst in place.
func reprojectRegions(regions RegionSet, src, dst *godal.SpatialRef) error {
	trn, err := godal.NewTransform(src, dst)
	if err != nil {
		return eris.Wrap(err, "spatial: boundary reprojection transform")
	}
	defer trn.Close()

	for i := range regions {
		mp := regions[i].Geom
		flat := mp.FlatCoords()
		n := len(flat) / 2
		xs := make([]float64, n)
		ys := make([]float64, n)
		for j := 0; j < n; j++ {
			xs[j] = flat[2*j]
			ys[j] = flat[2*j+1]
		}
		if err := trn.TransformEx(xs, ys, nil, nil); err != nil {
			return eris.Wrapf(err, "spatial: reproject region %q", regions[i].Name)
		}
		out := make([]float64, len(flat))
		for j := 0; j < n; j++ {
			out[2*j] = xs[j]
			out[2*j+1] = ys[j]
		}
		regions[i].Geom = geom.NewMultiPolygonFlat(geom.XY, out, mp.Endss())
	}
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// formatCoord renders a coordinate for a GDAL switch argument.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
