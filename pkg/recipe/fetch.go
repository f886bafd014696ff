package recipe

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ngld/install-buildtools/pkg"
)

// SourceURL constructs the download location of the recipe's source archive
// on the upstream package index.
func (r *Recipe) SourceURL() string {
	if r.Source.URL != "" {
		return r.Source.URL
	}

	name := r.Source.PyPI
	return fmt.Sprintf("https://files.pythonhosted.org/packages/source/%s/%s/%s-%s.tar.gz",
		name[:1], name, name, r.Source.Version)
}

// FetchSource downloads the recipe's source archive, verifies it against the
// recipe's checksum and unpacks it below destDir. Unlike the buildtools
// installer, a checksum mismatch here is fatal.
func FetchSource(ctx context.Context, rec *Recipe, destDir string) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	url := rec.SourceURL()
	archivePath := filepath.Join(destDir, filepath.Base(url))

	err := os.MkdirAll(destDir, os.FileMode(0770))
	if err != nil {
		return eris.Wrapf(err, "Failed to create directory %s", destDir)
	}

	client := &http.Client{
		Timeout: time.Minute * 30,
	}

	pkg.PrintSubtask(rec.Name + ":  " + url)
	digest, err := pkg.DownloadFile(ctx, client, url, archivePath, "     download")
	if err != nil {
		return err
	}
	defer os.Remove(archivePath)

	if digest != rec.Source.Sha256 {
		return eris.Errorf("Checksum check failed for %s", rec.Name)
	}

	extractor, err := getExtractor(url)
	if err != nil {
		return err
	}

	handle, err := os.Open(archivePath)
	if err != nil {
		return eris.Wrapf(err, "Failed to open %s", archivePath)
	}
	defer handle.Close()

	return extractor(handle, filepath.Join(destDir, rec.Name), rec.Source.Strip)
}
