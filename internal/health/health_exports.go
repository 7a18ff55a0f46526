package health

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ExportsInfo describes the calendar export directory.
type ExportsInfo struct {
	Path       string   `json:"path"`
	Exists     bool     `json:"exists"`
	Files      []string `json:"files,omitempty"`
	TotalBytes int64    `json:"totalBytes"`
	UpdatedAt  string   `json:"updatedAt,omitempty"`
	ParseError string   `json:"parseError,omitempty"`
}

func inspectExportDir(path string) *ExportsInfo {
	info := &ExportsInfo{Path: path}

	entries, err := os.ReadDir(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			info.ParseError = err.Error()
		}
		return info
	}
	info.Exists = true

	var latest time.Time
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".ics") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			info.ParseError = err.Error()
			continue
		}
		info.Files = append(info.Files, e.Name())
		info.TotalBytes += fi.Size()
		if fi.ModTime().After(latest) {
			latest = fi.ModTime()
		}
	}
	sort.Strings(info.Files)
	if !latest.IsZero() {
		info.UpdatedAt = latest.Format(time.RFC3339)
	}
	return info
}
