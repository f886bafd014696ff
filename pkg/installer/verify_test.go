package installer

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	logger := zerolog.Nop()
	return WithLogger(context.Background(), &logger)
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.sh.sha256sum")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), os.FileMode(0660)))
	return path
}

func TestParseManifest(t *testing.T) {
	entry, err := parseManifest("deadbeef  some/release/path/installer.sh\n")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", entry.Digest)
	assert.Equal(t, "installer.sh", entry.Filename)
}

func TestParseManifestWithoutPath(t *testing.T) {
	entry, err := parseManifest("deadbeef  installer.sh")
	require.NoError(t, err)
	assert.Equal(t, "installer.sh", entry.Filename)
}

func TestParseManifestSkipsGarbage(t *testing.T) {
	entry, err := parseManifest("# comment\n\ncafebabe  installer.sh\n")
	require.NoError(t, err)
	assert.Equal(t, "cafebabe", entry.Digest)
}

func TestParseManifestEmpty(t *testing.T) {
	_, err := parseManifest("")
	assert.Error(t, err)
}

func TestVerifyFilenameMismatch(t *testing.T) {
	path := writeManifest(t, "deadbeef  other-installer.sh\n")

	err := verify(testContext(), path, "installer.sh", "deadbeef")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "other-installer.sh")
}

func TestVerifyDigestMismatchIsNotFatal(t *testing.T) {
	path := writeManifest(t, "deadbeef  installer.sh\n")

	// a digest mismatch is only logged, the pipeline keeps going
	err := verify(testContext(), path, "installer.sh", "cafebabe")
	assert.NoError(t, err)
}

func TestVerifyMatch(t *testing.T) {
	path := writeManifest(t, "deadbeef  installer.sh\n")

	err := verify(testContext(), path, "installer.sh", "deadbeef")
	assert.NoError(t, err)
}

func TestVerifyMissingManifest(t *testing.T) {
	err := verify(testContext(), filepath.Join(t.TempDir(), "missing"), "installer.sh", "deadbeef")
	assert.Error(t, err)
}
