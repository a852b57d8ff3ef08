// Package extract ensures the administrative boundary shapefile bundle is
// unpacked on disk before the spatial loader runs.
package extract

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridpop/popmap/internal/config"
)

// ErrMissingInput marks a fatal missing-file condition (absent archive or
// absent raster). Callers match it with eris.Is.
var ErrMissingInput = eris.New("missing input")

// EnsureShapefile returns the path to the boundary shapefile, extracting the
// source archive into the extraction directory if needed. The steady-state
// fast path is a no-op: if the .shp is already present its path is returned
// without touching the archive. Extraction always overwrites, so a run
// interrupted mid-extract is repaired by the next run.
func EnsureShapefile(cfg *config.Config) (string, error) {
	extractDir := filepath.Join(cfg.Data.BaseDir, cfg.Data.ExtractDir)
	shpPath := filepath.Join(extractDir, cfg.Data.Shapefile)

	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", eris.Wrap(err, "extract: create extract dir")
	}

	if _, err := os.Stat(shpPath); err == nil {
		zap.L().Debug("shapefile already extracted", zap.String("path", shpPath))
		return shpPath, nil
	}

	zipPath := filepath.Join(cfg.Data.BaseDir, cfg.Data.ZipFile)
	if _, err := os.Stat(zipPath); err != nil {
		return "", eris.Wrapf(ErrMissingInput, "extract: boundary archive %s not found", zipPath)
	}

	zap.L().Info("extracting boundary archive",
		zap.String("archive", zipPath),
		zap.String("dest", extractDir),
	)

	if _, err := extractZIP(zipPath, extractDir); err != nil {
		return "", err
	}

	if _, err := os.Stat(shpPath); err != nil {
		return "", eris.Wrapf(ErrMissingInput, "extract: archive %s does not contain %s", zipPath, cfg.Data.Shapefile)
	}

	return shpPath, nil
}

// extractZIP extracts all files from a ZIP archive to the destination
// directory, overwriting existing files. Returns the extracted paths.
func extractZIP(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "extract: open archive")
	}
	defer r.Close() //nolint:errcheck

	var extracted []string
	for _, f := range r.File {
		path, err := extractZIPEntry(f, destDir)
		if err != nil {
			return extracted, err
		}
		if path != "" {
			extracted = append(extracted, path)
		}
	}

	return extracted, nil
}

// extractZIPEntry extracts a single zip.File to the destination directory.
// Returns the extracted file path, or empty string for directories.
func extractZIPEntry(f *zip.File, destDir string) (string, error) {
	// Sanitize against zip slip
	destPath := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("extract: illegal path %q (zip slip attempt)", f.Name)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return "", eris.Wrap(err, "extract: create directory")
		}
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", eris.Wrap(err, "extract: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "extract: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return "", eris.Wrap(err, "extract: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return "", eris.Wrap(err, "extract: write file")
	}

	return destPath, nil
}
