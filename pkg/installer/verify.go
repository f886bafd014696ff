package installer

import (
	"context"
	"io/ioutil"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// Manifest lines look like "sha256sum  some/path/filename".
var manifestLineRegexp = regexp.MustCompile(`^(?P<digest>[0-9a-f]+)\s+(?P<path>.*/)?(?P<filename>\S+)\s*$`)

type manifestEntry struct {
	Digest   string
	Filename string
}

// parseManifest extracts the first digest/filename pair from a checksum
// manifest. The path segment, if present, is discarded.
func parseManifest(data string) (*manifestEntry, error) {
	for _, line := range strings.Split(data, "\n") {
		groups := manifestLineRegexp.FindStringSubmatch(line)
		if groups == nil {
			continue
		}

		return &manifestEntry{
			Digest:   groups[manifestLineRegexp.SubexpIndex("digest")],
			Filename: groups[manifestLineRegexp.SubexpIndex("filename")],
		}, nil
	}

	return nil, eris.New("No checksum entry found in manifest")
}

// verify cross-checks the manifest against the downloaded bundle. A filename
// mismatch is fatal. A digest mismatch is only logged and installation
// proceeds anyway.
func verify(ctx context.Context, manifestPath, expectedName, digest string) error {
	data, err := ioutil.ReadFile(manifestPath)
	if err != nil {
		return eris.Wrapf(err, "Failed to read manifest %s", manifestPath)
	}

	entry, err := parseManifest(string(data))
	if err != nil {
		return err
	}

	if entry.Filename != expectedName {
		return eris.Errorf("Manifest names %s but %s was expected", entry.Filename, expectedName)
	}

	if entry.Digest != digest {
		log(ctx).Error().
			Str("expected", entry.Digest).
			Str("actual", digest).
			Msg("Checksum mismatch for the buildtools installer")
		return nil
	}

	log(ctx).Info().Msg("Checksum of the buildtools installer verified")
	return nil
}
