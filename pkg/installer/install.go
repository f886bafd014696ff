package installer

import (
	"context"
	"os"
	"os/exec"

	"github.com/rotisserie/eris"
)

// install marks the downloaded bundle executable and runs it. The bundle is
// a self-extracting script which unpacks itself into installDir.
func install(ctx context.Context, bundlePath, installDir string) error {
	fi, err := os.Stat(bundlePath)
	if err != nil {
		return eris.Wrapf(err, "Failed to read permissions for %s", bundlePath)
	}

	err = os.Chmod(bundlePath, fi.Mode()|0700)
	if err != nil {
		return eris.Wrapf(err, "Failed to mark %s as executable", bundlePath)
	}

	log(ctx).Info().Str("path", installDir).Msg("Running the buildtools installer")

	cmd := exec.CommandContext(ctx, bundlePath, "-d", installDir, "-y")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err = cmd.Run()
	if err != nil {
		return eris.Wrapf(err, "The buildtools installer %s failed", bundlePath)
	}

	return nil
}
