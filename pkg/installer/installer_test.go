package installer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBundle is a stand-in for the self-extracting buildtools installer. It
// understands the same -d/-y arguments and produces the same artifacts: an
// environment-setup script and a populated bin directory.
const fakeBundle = `#!/bin/sh
set -e
dir=""
while [ $# -gt 0 ]; do
	case "$1" in
		-d) dir="$2"; shift 2 ;;
		*) shift ;;
	esac
done
mkdir -p "$dir/bin"
printf '#!/bin/sh\nexit 0\n' > "$dir/bin/gcc"
chmod 0755 "$dir/bin/gcc"
printf 'export PATH="%s/bin:$PATH"\n' "$dir" > "$dir/environment-setup-x86_64-buildtools"
touch "$dir/installed.marker"
`

type testServer struct {
	*httptest.Server
	requests int
	files    map[string][]byte
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{files: map[string][]byte{}}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.requests++
		data, ok := ts.files[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func digestOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func pipelineConfig(t *testing.T, ts *testServer) (*Config, string, string) {
	t.Helper()
	tempParent := t.TempDir()
	installDir := filepath.Join(t.TempDir(), "buildtools")

	cfg := testConfig()
	cfg.URL = ts.URL
	cfg.Filename = "x86_64-buildtools-extended-nativesdk-standalone-4.1.sh"
	cfg.Directory = installDir
	cfg.tempParent = tempParent

	return cfg, tempParent, installDir
}

func assertNoLeftovers(t *testing.T, tempParent string) {
	t.Helper()
	entries, err := os.ReadDir(tempParent)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary download directory was not cleaned up")
}

func TestRunSucceeds(t *testing.T) {
	ts := newTestServer(t)
	cfg, tempParent, installDir := pipelineConfig(t, ts)

	bundle := []byte(fakeBundle)
	ts.files["/"+cfg.Filename] = bundle
	ts.files["/"+cfg.Filename+".sha256sum"] = []byte(fmt.Sprintf("%s  %s\n", digestOf(bundle), cfg.Filename))

	err := Run(testContext(), cfg)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(installDir, "installed.marker"))
	assertNoLeftovers(t, tempParent)
}

func TestRunChecksumMismatchStillInstalls(t *testing.T) {
	ts := newTestServer(t)
	cfg, tempParent, installDir := pipelineConfig(t, ts)

	bundle := []byte(fakeBundle)
	ts.files["/"+cfg.Filename] = bundle
	ts.files["/"+cfg.Filename+".sha256sum"] = []byte(fmt.Sprintf("%s  %s\n",
		digestOf([]byte("something else entirely")), cfg.Filename))

	err := Run(testContext(), cfg)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(installDir, "installed.marker"))
	assertNoLeftovers(t, tempParent)
}

func TestRunFilenameMismatchAbortsBeforeInstall(t *testing.T) {
	ts := newTestServer(t)
	cfg, tempParent, installDir := pipelineConfig(t, ts)

	bundle := []byte(fakeBundle)
	ts.files["/"+cfg.Filename] = bundle
	ts.files["/"+cfg.Filename+".sha256sum"] = []byte(fmt.Sprintf("%s  %s\n", digestOf(bundle), "unrelated.sh"))

	err := Run(testContext(), cfg)
	require.Error(t, err)

	assert.NoFileExists(t, filepath.Join(installDir, "installed.marker"))
	assertNoLeftovers(t, tempParent)
}

func TestRunFetchFailureCleansUp(t *testing.T) {
	ts := newTestServer(t)
	cfg, tempParent, _ := pipelineConfig(t, ts)

	// the server knows neither the bundle nor the manifest
	err := Run(testContext(), cfg)
	require.Error(t, err)
	assertNoLeftovers(t, tempParent)
}

func TestRunPanicStillCleansUp(t *testing.T) {
	ts := newTestServer(t)
	cfg, tempParent, _ := pipelineConfig(t, ts)

	defer func() {
		require.NotNil(t, recover(), "expected the missing logger to cause a panic")
		assertNoLeftovers(t, tempParent)
	}()

	// a context without a logger makes the first log call inside the fetch
	// stage panic, after the temporary directory has been created
	_ = Run(context.Background(), cfg)
}

func TestRunMilestoneWithoutBuildDateMakesNoRequest(t *testing.T) {
	ts := newTestServer(t)
	cfg, tempParent, _ := pipelineConfig(t, ts)
	cfg.URL = ""
	cfg.Filename = ""
	cfg.BaseURL = ts.URL
	cfg.Release = "yocto-4.1_M3"

	err := Run(testContext(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires --build-date")
	assert.Equal(t, 0, ts.requests)
	assertNoLeftovers(t, tempParent)
}

func TestRunWithoutChecksumCheck(t *testing.T) {
	ts := newTestServer(t)
	cfg, tempParent, installDir := pipelineConfig(t, ts)
	cfg.Check = false

	ts.files["/"+cfg.Filename] = []byte(fakeBundle)

	err := Run(testContext(), cfg)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(installDir, "installed.marker"))
	assertNoLeftovers(t, tempParent)
}
