// Package filesystem provides directory and path helpers.
package filesystem

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

const ownerReadWriteExec = 0o700

// GetUserHomeDirectory returns the user home directory if one is set.
func GetUserHomeDirectory() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// GetCanonicalPath returns an os-specific full path:
// - replace ~ with the user's home dir path
// - expand any ${vars} or $vars
// - resolve relative paths /.../
func GetCanonicalPath(p string) string {
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~\\") {
		if home := GetUserHomeDirectory(); home != "" {
			p = home + p[1:]
		}
	}
	return filepath.Clean(os.ExpandEnv(p))
}

// ExistOrCreate creates the given path if it does not exist.
func ExistOrCreate(path string) error {
	return os.MkdirAll(path, ownerReadWriteExec)
}
