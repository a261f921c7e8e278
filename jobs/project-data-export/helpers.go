package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func archiveFileName(date time.Time, projectSlug string, format string) string {
	dateStr := date.Format("2006-01-02")
	return fmt.Sprintf("%s##%s##%s.zip", dateStr, projectSlug, format)
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false
		}
		return false
	}
	return !info.IsDir()
}

// deleteExpiredArchives removes date-prefixed archives older than the
// retention window from the export path.
func deleteExpiredArchives(exportPath string, retentionDays int) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	files, err := filepath.Glob(filepath.Join(exportPath, "*##*##*.zip"))
	if err != nil {
		slog.Error("Error listing export files", slog.String("error", err.Error()))
		return
	}

	for _, file := range files {
		dateStr, _, found := strings.Cut(filepath.Base(file), "##")
		if !found {
			continue
		}
		fileDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		if fileDate.Before(cutoff) {
			if err := os.Remove(file); err != nil {
				slog.Error("Error deleting expired export file", slog.String("file", file), slog.String("error", err.Error()))
				continue
			}
			slog.Info("Deleted expired export file", slog.String("file", filepath.Base(file)))
		}
	}
}
