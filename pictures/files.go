package pictures

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"github.com/krishkalaria12/pic-profile-maker/models"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// uploadExtension returns the lower-cased extension of name if it is an accepted image type.
func uploadExtension(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %w: %q", ErrInvalidRequest, ErrUnsupportedFile, name)
	}
	return ext, nil
}

// writeUpload copies r into a fresh temp file in dir. The caller removes it.
func writeUpload(dir, ext string, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp upload: %w", err)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write temp upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write temp upload: %w", err)
	}
	return tmp.Name(), nil
}

// nextSequence scans dir for {stem}_{quality}_{n}{ext} and returns max(n)+1, or 0 when none exist.
func nextSequence(dir, stem string, quality models.Quality, ext string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read picture directory: %w", err)
	}

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(stem+"_"+string(quality)+"_") + `(\d+)` + regexp.QuoteMeta(ext) + "$")
	next := 0
	for _, e := range entries {
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n+1 > next {
			next = n + 1
		}
	}
	return next, nil
}

// reserveFilename creates an empty destination file with O_EXCL so concurrent
// requests never pick the same name. It returns the reserved filename.
func reserveFilename(dir, stem string, quality models.Quality, ext string) (string, error) {
	seq, err := nextSequence(dir, stem, quality, ext)
	if err != nil {
		return "", err
	}

	for {
		name := fmt.Sprintf("%s_%s_%d%s", stem, quality, seq, ext)
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			f.Close()
			return name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to reserve %s: %w", name, err)
		}
		seq++
	}
}

// moveFile renames src to dst, falling back to copy and remove across devices.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("failed to move picture: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open processed picture: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy picture: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to copy picture: %w", err)
	}
	return os.Remove(src)
}

func splitName(path string) (stem, ext string) {
	base := filepath.Base(path)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}
