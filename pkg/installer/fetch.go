package installer

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ngld/install-buildtools/pkg"
)

type fetchResult struct {
	BundlePath   string
	ManifestPath string
	Digest       string
}

func newClient() *http.Client {
	return &http.Client{
		Timeout: time.Minute * 30,
	}
}

// fetch downloads the installer bundle and, when checksum checking is
// enabled, the accompanying manifest into tmpDir.
func fetch(ctx context.Context, client *http.Client, res *Resolved, check bool, tmpDir string) (*fetchResult, error) {
	result := fetchResult{
		BundlePath: filepath.Join(tmpDir, res.Filename),
	}

	log(ctx).Info().Str("url", res.DownloadURL).Msg("Fetching buildtools installer")
	digest, err := pkg.DownloadFile(ctx, client, res.DownloadURL, result.BundlePath, "     download")
	if err != nil {
		return nil, eris.Wrap(err, "Failed to fetch the buildtools installer")
	}
	result.Digest = digest

	if check {
		manifestURL := res.DownloadURL + ".sha256sum"
		result.ManifestPath = filepath.Join(tmpDir, res.Filename+".sha256sum")

		log(ctx).Info().Str("url", manifestURL).Msg("Fetching checksum manifest")
		_, err = pkg.DownloadFile(ctx, client, manifestURL, result.ManifestPath, "     manifest")
		if err != nil {
			return nil, eris.Wrap(err, "Failed to fetch the checksum manifest")
		}
	}

	return &result, nil
}
