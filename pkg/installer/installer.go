// Package installer implements the buildtools installation pipeline: resolve
// the download URL, fetch the self-extracting bundle, verify it against its
// checksum manifest, run it and smoke test the result. The stages run
// strictly in sequence and the first fatal condition aborts the run.
package installer

import (
	"context"
	"io/ioutil"
	"os"

	"github.com/rotisserie/eris"
)

// Run executes the full pipeline. The temporary download directory is
// removed on every exit path.
func Run(ctx context.Context, cfg *Config) error {
	res, err := cfg.Resolve()
	if err != nil {
		return err
	}

	tmpDir, err := ioutil.TempDir(cfg.tempParent, "install-buildtools-")
	if err != nil {
		return eris.Wrap(err, "Failed to create a temporary download directory")
	}
	defer os.RemoveAll(tmpDir)

	fetched, err := fetch(ctx, newClient(), res, cfg.Check, tmpDir)
	if err != nil {
		return err
	}

	if cfg.Check {
		err = verify(ctx, fetched.ManifestPath, res.Filename, fetched.Digest)
		if err != nil {
			return err
		}
	} else {
		log(ctx).Warn().Msg("Checksum checking is disabled")
	}

	err = install(ctx, fetched.BundlePath, res.InstallDir)
	if err != nil {
		return err
	}

	return smokeTest(ctx, res.InstallDir, cfg.Extended)
}
