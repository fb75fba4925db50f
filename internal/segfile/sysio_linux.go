//go:build linux

package segfile

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// fdatasync flushes file data without forcing a metadata sync where the
// OS distinguishes the two.
func fdatasync(file *os.File) error {
	return unix.Fdatasync(int(file.Fd()))
}

// fadviseWillNeed hints the kernel to read the byte range ahead of time.
// Reports whether the hint was actually issued.
func fadviseWillNeed(file *os.File, offset, length int64) (bool, error) {
	err := unix.Fadvise(int(file.Fd()), offset, length, unix.FADV_WILLNEED)
	if err != nil {
		if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.EOPNOTSUPP) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// syncFileRange starts writeback of the byte range without waiting for it
// to reach stable storage.
func syncFileRange(file *os.File, offset, length int64) error {
	err := unix.SyncFileRange(int(file.Fd()), offset, length, unix.SYNC_FILE_RANGE_WRITE)
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
		return nil
	}
	return err
}

// fallocate reserves zeroed space for the byte range. Reports whether the
// filesystem handled it; the caller falls back to writing zeros otherwise.
func fallocate(file *os.File, offset, length int64) (bool, error) {
	err := unix.Fallocate(int(file.Fd()), 0, offset, length)
	if err != nil {
		if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
