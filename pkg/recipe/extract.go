package recipe

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/ulikunitz/xz"

	"github.com/ngld/install-buildtools/pkg"
)

type archiveExtractor func(f *os.File, destPath string, strip int) error

func openExtractorDest(destPath string, item string, strip int) (*os.File, string, error) {
	// normalize the path and strip the leading elements
	pathParts := strings.Split(filepath.Clean(item), string(filepath.Separator))
	if strip >= len(pathParts) {
		return nil, "/", nil
	}
	dest := filepath.Join(destPath, strings.Join(pathParts[strip:], string(filepath.Separator)))

	if dest == destPath {
		return nil, "/", nil
	}

	destParent := filepath.Dir(dest)
	err := os.MkdirAll(destParent, os.FileMode(0770))
	if err != nil {
		return nil, "", eris.Wrapf(err, "Failed to create directory %s", destParent)
	}

	destHandle, err := os.Create(dest)
	if err != nil {
		return nil, "", eris.Wrapf(err, "Failed to create file %s", dest)
	}

	return destHandle, dest, nil
}

func extractionBar(f *os.File) *progressbar.ProgressBar {
	length := int64(-1)
	stat, err := f.Stat()
	if err == nil {
		length = stat.Size()
	}

	return pkg.NewProgressBar(length, "      extract")
}

func getExtractor(url string) (archiveExtractor, error) {
	if strings.HasSuffix(url, ".zip") {
		return extractZip, nil
	}

	if strings.HasSuffix(url, ".tar.gz") {
		return func(f *os.File, destPath string, strip int) error {
			reader, err := gzip.NewReader(f)
			if err != nil {
				return err
			}
			defer reader.Close()

			return extractTar(reader, f, destPath, strip)
		}, nil
	}

	if strings.HasSuffix(url, ".tar.bz2") {
		return func(f *os.File, destPath string, strip int) error {
			return extractTar(bzip2.NewReader(f), f, destPath, strip)
		}, nil
	}

	if strings.HasSuffix(url, ".tar.xz") {
		return func(f *os.File, destPath string, strip int) error {
			reader, err := xz.NewReader(f)
			if err != nil {
				return err
			}

			return extractTar(reader, f, destPath, strip)
		}, nil
	}

	return nil, eris.New("Archive format not supported")
}

func extractZip(f *os.File, destPath string, strip int) error {
	stat, err := f.Stat()
	if err != nil {
		return err
	}

	archive, err := zip.NewReader(f, stat.Size())
	if err != nil {
		return err
	}

	bar := extractionBar(f)
	buf := make([]byte, 4096)
	for _, item := range archive.File {
		if strings.HasSuffix(item.Name, "/") {
			continue
		}

		destHandle, dest, err := openExtractorDest(destPath, item.Name, strip)
		if err != nil {
			return err
		}
		if destHandle == nil {
			continue
		}

		itemHandle, err := item.Open()
		if err != nil {
			destHandle.Close()
			return eris.Wrap(err, "Failed to open archive entry")
		}

		for {
			n, err := itemHandle.Read(buf)
			if err != nil && n < 1 {
				if err == io.EOF {
					break
				}
				itemHandle.Close()
				destHandle.Close()
				return eris.Wrapf(err, "Failed to read archive entry %s", item.Name)
			}

			_, err = destHandle.Write(buf[:n])
			if err != nil {
				itemHandle.Close()
				destHandle.Close()
				return eris.Wrapf(err, "Failed to write extracted file %s", dest)
			}

			pos, err := f.Seek(0, io.SeekCurrent)
			if err == nil {
				bar.Set64(pos)
			}
		}

		itemHandle.Close()
		destHandle.Close()
	}
	bar.Finish()

	return nil
}

func extractTar(r io.Reader, f *os.File, destPath string, strip int) error {
	buf := make([]byte, 4096)
	archive := tar.NewReader(r)
	bar := extractionBar(f)

	for {
		item, err := archive.Next()
		if err != nil {
			if err == io.EOF {
				break
			}

			return eris.Wrap(err, "Failed to read archive entry")
		}

		fi := item.FileInfo()
		if fi.IsDir() {
			continue
		}

		destHandle, dest, err := openExtractorDest(destPath, item.Name, strip)
		if err != nil {
			return err
		}
		if destHandle == nil {
			continue
		}

		if item.Typeflag == tar.TypeSymlink {
			destHandle.Close()
			err := os.Remove(dest)
			if err != nil {
				return eris.Wrapf(err, "Failed to remove placeholder file %s", dest)
			}

			err = os.Symlink(item.Linkname, dest)
			if err != nil {
				return eris.Wrapf(err, "Failed to create symlink %s pointing to %s", dest, item.Linkname)
			}
			continue
		}

		os.Chmod(dest, fi.Mode())

		for {
			n, err := archive.Read(buf)
			if err != nil && n < 1 {
				if err == io.EOF {
					break
				}
				destHandle.Close()
				return eris.Wrapf(err, "Failed to read archive entry %s", item.Name)
			}

			_, err = destHandle.Write(buf[:n])
			if err != nil {
				destHandle.Close()
				return eris.Wrapf(err, "Failed to write extracted file %s", dest)
			}

			pos, err := f.Seek(0, io.SeekCurrent)
			if err == nil {
				bar.Set64(pos)
			}
		}

		destHandle.Close()
	}
	bar.Finish()

	return nil
}
