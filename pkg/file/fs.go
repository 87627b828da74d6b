// SPDX-License-Identifier: BSD-3-Clause

package file

import (
	"os"
	"strconv"
	"strings"
)

// ReadBytes reads the whole content of path, wrapping any failure in an
// ErrIO-tagged PathError that names the offending path.
func ReadBytes(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, newIOError(path, err)
	}
	return b, nil
}

// ReadString reads path and returns its content with surrounding
// whitespace trimmed, matching how ConfigFS attribute files are
// terminated with a trailing newline.
func ReadString(path string) (string, error) {
	b, err := ReadBytes(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// WriteBytes writes data to path, wrapping any failure in an
// ErrIO-tagged PathError. A missing file is created with mode 0644 and
// an existing one is truncated; ConfigFS attribute files already exist
// (they are kernel-created).
func WriteBytes(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return newIOError(path, err)
	}
	return nil
}

// WriteString is WriteBytes for a string value.
func WriteString(path, data string) error {
	return WriteBytes(path, []byte(data))
}

// ReadNum reads path and parses it as a base-10 integer of type T.
func ReadNum[T ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](path string) (T, error) {
	s, err := ReadString(path)
	if err != nil {
		return 0, err
	}
	n, perr := strconv.ParseInt(s, 10, 64)
	if perr != nil {
		un, uerr := strconv.ParseUint(s, 10, 64)
		if uerr != nil {
			return 0, newDeserializeError(path, perr)
		}
		return T(un), nil
	}
	return T(n), nil
}

// ReadBool reads path and interprets "1" as true and "0" (or anything
// else) as false, matching ConfigFS boolean attribute conventions.
func ReadBool(path string) (bool, error) {
	s, err := ReadString(path)
	if err != nil {
		return false, err
	}
	return s == "1", nil
}

// WriteBool writes "1" or "0" to path.
func WriteBool(path string, v bool) error {
	if v {
		return WriteString(path, "1")
	}
	return WriteString(path, "0")
}

// CreateDir creates path as a single directory, wrapping any failure.
// Unlike os.MkdirAll it does not create parents — ConfigFS directories
// must be created one level at a time for the kernel to notice each
// allocation.
func CreateDir(path string) error {
	if err := os.Mkdir(path, 0o755); err != nil {
		return newIOError(path, err)
	}
	return nil
}

// RemoveDir removes the single empty directory at path.
func RemoveDir(path string) error {
	if err := os.Remove(path); err != nil {
		return newIOError(path, err)
	}
	return nil
}

// Symlink creates a symbolic link at newname pointing to oldname,
// wrapping any failure in an ErrIO-tagged PathError naming newname.
func Symlink(oldname, newname string) error {
	if err := os.Symlink(oldname, newname); err != nil {
		return newIOError(newname, err)
	}
	return nil
}

// RemoveFile removes the file (or symlink) at path.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil {
		return newIOError(path, err)
	}
	return nil
}

// ReadDirEntries lists the entries of path, wrapping any failure.
func ReadDirEntries(path string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, newIOError(path, err)
	}
	return entries, nil
}

// IsDir reports whether path exists and is a directory. It never
// returns an error: a stat failure is treated as "not a directory",
// matching the original's `base_dir.is_dir()` used as a cheap existence
// probe before cleanup.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// LstatIsSymlink reports whether the entry at path is a symbolic link,
// used by configuration cleanup to distinguish function symlinks from
// string-descriptor subdirectories without following the link.
func LstatIsSymlink(path string) (bool, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return false, newIOError(path, err)
	}
	return fi.Mode()&os.ModeSymlink != 0, nil
}
