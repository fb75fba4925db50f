//go:build !linux

package segfile

import "os"

func fdatasync(file *os.File) error {
	return file.Sync()
}

func fadviseWillNeed(file *os.File, offset, length int64) (bool, error) {
	return false, nil
}

func syncFileRange(file *os.File, offset, length int64) error {
	return nil
}

func fallocate(file *os.File, offset, length int64) (bool, error) {
	return false, nil
}
