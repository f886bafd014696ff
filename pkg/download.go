package pkg

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"

	"github.com/rotisserie/eris"
)

// DownloadFile fetches url into dest while computing the sha256 digest of
// everything written. The digest is returned as a lowercase hex string.
func DownloadFile(ctx context.Context, client *http.Client, url, dest, desc string) (string, error) {
	handle, err := os.Create(dest)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to create file %s", dest)
	}
	defer handle.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to prepare request for %s", url)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "Failed to start download for %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("Download of %s failed with status %s", url, resp.Status)
	}

	hash := sha256.New()
	bar := NewProgressBar(resp.ContentLength, desc)
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if err != nil && n < 1 {
			if err == io.EOF {
				break
			}
			return "", eris.Wrapf(err, "Failed during download of %s", url)
		}

		_, err = hash.Write(buf[:n])
		if err != nil {
			return "", eris.Wrapf(err, "Failed to calculate checksum for %s", url)
		}

		_, err = handle.Write(buf[:n])
		if err != nil {
			return "", eris.Wrapf(err, "Failed to write download to file %s", dest)
		}

		bar.Write(buf[:n])
	}
	bar.Finish()

	return hex.EncodeToString(hash.Sum(nil)), nil
}
