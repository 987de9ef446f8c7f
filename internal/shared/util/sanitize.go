package util

import (
	"errors"
	"path"
	"strings"
)

var ErrInvalidKey = errors.New("invalid storage key")

// SanitizeKey normalizes an object key to forward slashes and rejects traversal.
func SanitizeKey(key string) (string, error) {
	s := strings.TrimSpace(key)
	s = strings.ReplaceAll(s, "\\", "/")
	if s == "" || strings.Contains(s, "..") {
		return "", ErrInvalidKey
	}
	s = strings.TrimPrefix(path.Clean("/"+s), "/")
	if s == "" || s == "." {
		return "", ErrInvalidKey
	}
	return s, nil
}
