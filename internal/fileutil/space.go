package fileutil

import "golang.org/x/sys/unix"

// FreeSpace reports the bytes available to unprivileged writes at path.
func FreeSpace(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// Writable reports whether the process can write to the directory at path.
func Writable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}
