// Package osutil holds platform names and file permissions shared across
// packages
package osutil

const (
	Windows = "windows"
	Darwin  = "darwin"
)

const (
	DirPermission    = 0o755
	SecretPermission = 0o600
)
