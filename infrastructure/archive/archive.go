// Package archive extracts the .tar.gz asset bundle and enumerates the
// source files that make up the initial commit.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/gzip"
	logger "github.com/sirupsen/logrus"

	"github.com/devopslab/labseed/domain"
)

const extractedFileMode = 0o644

// ExtractTarGz unpacks a gzip-compressed tarball into destDir. Entries whose
// names would escape destDir are rejected; non-regular entries other than
// directories are skipped.
func ExtractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open asset archive %q: %w", archivePath, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read gzip stream of %q: %w", archivePath, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, readErr := tr.Next()
		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("failed to read tar entry from %q: %w", archivePath, readErr)
		}

		name := filepath.Clean(filepath.FromSlash(hdr.Name))
		if !filepath.IsLocal(name) {
			return fmt.Errorf("archive entry %q escapes the extraction directory", hdr.Name)
		}
		target := filepath.Join(destDir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if mkErr := os.MkdirAll(target, 0o755); mkErr != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, mkErr)
			}
		case tar.TypeReg:
			if writeErr := writeEntry(target, tr); writeErr != nil {
				return writeErr
			}
		default:
			logger.Debugf("Skipping archive entry %q (type %d)", hdr.Name, hdr.Typeflag)
		}
	}
}

func writeEntry(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", target, err)
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, extractedFileMode)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("failed to write %q: %w", target, err)
	}

	return out.Close()
}

// ListSources walks root and returns every regular file carrying one of the
// initial-commit extensions, sorted for a deterministic commit order.
// Directories never match, whatever their names look like.
func ListSources(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if domain.IsSourceFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
