package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaterializeCredentials copies an opaque credential file into the
// session's credential sink, preserving its base name. The sink directory
// is created with owner-only permissions.
func (s *Store) MaterializeCredentials(key, sourceFile string) error {
	dir, err := s.EnsureCredentialDir(key)
	if err != nil {
		return err
	}

	src, err := os.Open(sourceFile)
	if err != nil {
		return fmt.Errorf("open credential file: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(dir, filepath.Base(sourceFile))
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create credential copy: %w", err)
	}

	_, err = io.Copy(dst, src)
	if err1 := dst.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		return fmt.Errorf("copy credential file: %w", err)
	}
	return nil
}
