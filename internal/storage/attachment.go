package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// CopyAttachment copies src into the directory of the given entry and
// returns the stored path relative to the storage root. A failed copy
// leaves nothing behind.
func (s *Store) CopyAttachment(book string, ts time.Time, src string) (string, error) {
	info, err := os.Stat(src)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		return "", fmt.Errorf("%w: %s", ErrAttachmentNotFound, src)
	}
	if err != nil {
		return "", fmt.Errorf("storage error reading attachment %s: %w", src, err)
	}

	dir := s.EntryDir(book, ts)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("storage error creating entry directory: %w", err)
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("%w: %s", ErrAttachmentExists, filepath.Base(src))
	}

	tmpPath := filepath.Join(dir, tempFilePrefix+uuid.NewString())
	if err := copyFile(src, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("storage error storing attachment: %w", err)
	}

	rel, err := filepath.Rel(s.root, dst)
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("storage error resolving attachment path: %w", err)
	}
	s.logger.Debugw("stored attachment", "src", src, "path", rel)
	return filepath.ToSlash(rel), nil
}

// RemoveAttachment deletes a stored attachment given its recorded path.
func (s *Store) RemoveAttachment(rel string) error {
	if err := os.Remove(s.Resolve(rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage error removing attachment: %w", err)
	}
	return nil
}

// Resolve turns a recorded attachment path into an absolute path.
func (s *Store) Resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("storage error opening attachment: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("storage error creating attachment: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("storage error copying attachment: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("storage error syncing attachment: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("storage error closing attachment: %w", err)
	}
	return nil
}
