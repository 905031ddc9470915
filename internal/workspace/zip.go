package workspace

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// FixedZipTime is stamped on every archive entry so equal trees give equal
// archives
var FixedZipTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// ErrUnsafeEntry is returned for archive entries that would land outside the
// extraction directory
var ErrUnsafeEntry = errors.New("unsafe archive entry")

// ExtractZip extracts an archive into a new tracked temporary directory
func (w *Workspace) ExtractZip(zipPath string) (string, error) {
	dir, err := w.TempDir("delphi-")
	if err != nil {
		return "", err
	}
	if err := Extract(zipPath, dir); err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", zipPath, err)
	}
	w.logger.Info("archive extracted", "archive", zipPath, "dir", dir)
	return dir, nil
}

// Extract unpacks zipPath into dest. Symbolic links are skipped.
func Extract(zipPath, dest string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return err
	}
	defer reader.Close()

	for _, entry := range reader.File {
		target, err := entryTarget(dest, entry.Name)
		if err != nil {
			return err
		}

		mode := entry.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case mode&fs.ModeSymlink != 0:
			continue
		default:
			if err := extractFile(entry, target); err != nil {
				return err
			}
		}
	}
	return nil
}

func entryTarget(dest, name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) ||
		(len(clean) >= 2 && clean[1] == ':') {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntry, name)
	}
	return filepath.Join(dest, filepath.FromSlash(clean)), nil
}

func extractFile(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", entry.Name, err)
	}
	defer src.Close()

	perm := entry.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("write %s: %w", entry.Name, err)
	}
	return dst.Close()
}

// CreateZip archives srcDir into zipPath. Entries are in lexical order with
// fixed timestamps; file permissions are kept.
func CreateZip(srcDir, zipPath string) (err error) {
	absZip, _ := filepath.Abs(zipPath)
	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(f)
	walkErr := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if abs, _ := filepath.Abs(p); abs == absZip {
			return nil
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		return addFile(zw, p, filepath.ToSlash(rel), d)
	})
	if walkErr != nil {
		zw.Close()
		return fmt.Errorf("failed to create %s: %w", zipPath, walkErr)
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, p, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: FixedZipTime}
	header.SetMode(info.Mode().Perm())
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	src, err := os.Open(p)
	if err != nil {
		return err
	}
	defer src.Close()
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
