package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// smokeTest sources the environment-setup script the installer generated and
// checks that the expected tool now resolves from inside the install
// directory. The extended bundle ships a compiler, the standard bundle only
// base utilities, hence the different probe commands.
func smokeTest(ctx context.Context, installDir string, extended bool) error {
	matches, err := filepath.Glob(filepath.Join(installDir, "environment-setup-*"))
	if err != nil {
		return eris.Wrapf(err, "Failed to search %s for an environment setup script", installDir)
	}
	if len(matches) == 0 {
		return eris.Errorf("No environment setup script found in %s", installDir)
	}
	envScript := matches[0]

	tool := "tar"
	if extended {
		tool = "gcc"
	}

	script := fmt.Sprintf(". %s\ncommand -v %s\n", shellQuote(envScript), tool)
	file, err := syntax.NewParser().Parse(strings.NewReader(script), "smoke-test")
	if err != nil {
		return eris.Wrap(err, "Failed to parse the smoke test script")
	}

	output := strings.Builder{}
	runner, err := interp.New(
		interp.Dir(installDir),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, &output, os.Stderr),
		interp.Params("-e"),
	)
	if err != nil {
		return eris.Wrap(err, "Failed to initialize runner")
	}

	err = runner.Run(ctx, file)
	if err != nil {
		return eris.Wrapf(err, "Failed to resolve %s with the installed environment", tool)
	}

	resolved := strings.TrimSpace(output.String())
	if !strings.HasPrefix(resolved, installDir+string(filepath.Separator)) {
		return eris.Errorf("%s resolved to %s which is outside of %s", tool, resolved, installDir)
	}

	log(ctx).Info().Str("path", resolved).Msgf("Smoke test passed, %s resolves from the installed buildtools", tool)
	return nil
}
