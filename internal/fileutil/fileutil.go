package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies src to dst with mode 0644. dst only ever holds either its
// previous contents or the complete copy.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return replace(dst, 0o644, func(tmp *os.File) error {
		_, err := io.Copy(tmp, in)
		return err
	})
}

// CopyFileVerified is CopyFile followed by a read-back of the staged copy:
// dst is only replaced when its size and SHA-256 match src.
func CopyFileVerified(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return replace(dst, 0o644, func(tmp *os.File) error {
		want := sha256.New()
		n, err := io.Copy(tmp, io.TeeReader(in, want))
		if err != nil {
			return err
		}
		if err := tmp.Sync(); err != nil {
			return err
		}
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return err
		}
		got := sha256.New()
		m, err := io.Copy(got, tmp)
		if err != nil {
			return fmt.Errorf("read back copy: %w", err)
		}
		if m != n {
			return fmt.Errorf("copy of %s: wrote %d bytes, read back %d", src, n, m)
		}
		if !bytes.Equal(want.Sum(nil), got.Sum(nil)) {
			return fmt.Errorf("copy of %s: checksum mismatch", src)
		}
		return nil
	})
}

// WriteFileAtomic writes data to path through a temp file and rename.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	return replace(path, mode, func(tmp *os.File) error {
		_, err := tmp.Write(data)
		return err
	})
}

// replace stages new contents in a hidden sibling of dst, then renames it
// over dst. The sibling is removed on any failure.
func replace(dst string, mode os.FileMode, fill func(*os.File) error) (err error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = fill(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(mode); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
