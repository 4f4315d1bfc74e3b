package util

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// SanitizeFileName strips directory components and rejects names that
// resolve to a directory reference.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.TrimSpace(filepath.Base(s))
	switch s {
	case "", ".", "..", "/":
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// TruncateFileName shortens name to at most max bytes, keeping the extension
// and never splitting a UTF-8 sequence.
func TruncateFileName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) >= max {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)
	budget := max - len(ext)
	for budget > 0 && !utf8.RuneStart(stem[budget]) {
		budget--
	}
	return stem[:budget] + ext
}

// Ext returns the lowercased extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
}
