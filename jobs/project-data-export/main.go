package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/epicollect5/epicollect5-server-sub010/pkg/export"
	projectTypes "github.com/epicollect5/epicollect5-server-sub010/pkg/project/types"
)

func main() {
	slog.Info("Starting project data export job")
	start := time.Now()

	deleteExpiredArchives(conf.ExportPath, conf.ProjectExports.RetentionDays)

	for _, task := range conf.ProjectExports.ExportTasks {
		runExportTask(task)
	}

	if err := projectDBService.DBClient.Disconnect(context.Background()); err != nil {
		slog.Error("Error closing DB connection", slog.String("error", err.Error()))
	}
	if err := userDBService.DBClient.Disconnect(context.Background()); err != nil {
		slog.Error("Error closing DB connection", slog.String("error", err.Error()))
	}
	slog.Info("Project data export job completed", slog.String("duration", time.Since(start).String()))
}

func runExportTask(task ProjectExportTask) {
	targetPath := filepath.Join(conf.ExportPath, archiveFileName(time.Now(), task.ProjectSlug, task.Format))
	if fileExists(targetPath) && !conf.ProjectExports.OverrideOld {
		slog.Info("Export file already exists, skipping", slog.String("file", filepath.Base(targetPath)))
		return
	}

	project, err := projectDBService.GetProjectBySlug(task.ProjectSlug)
	if err != nil {
		slog.Error("Error fetching project", slog.String("projectSlug", task.ProjectSlug), slog.String("error", err.Error()))
		return
	}

	slog.Info("Starting project export",
		slog.String("projectSlug", task.ProjectSlug),
		slog.Int64("entries", countProjectEntries(project)))

	archivePath, err := exportService.ExportProject(context.Background(), &project, export.Params{
		Format:   task.Format,
		MapIndex: task.MapIndex,
	})
	if err != nil {
		slog.Error("Error exporting project", slog.String("projectSlug", task.ProjectSlug), slog.String("error", err.Error()))
		return
	}

	workDir := filepath.Dir(archivePath)
	if err := os.Rename(archivePath, targetPath); err != nil {
		slog.Error("Error moving export archive", slog.String("projectSlug", task.ProjectSlug), slog.String("error", err.Error()))
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			slog.Error("Error cleaning up export directory", slog.String("error", rmErr.Error()))
		}
		return
	}
	if err := os.RemoveAll(workDir); err != nil {
		slog.Error("Error cleaning up export directory", slog.String("error", err.Error()))
	}

	slog.Info("Exported project", slog.String("projectSlug", task.ProjectSlug), slog.String("file", filepath.Base(targetPath)))
}

// countProjectEntries totals form and branch entries across the project, for
// the job log only. Count failures are ignored; the export itself decides
// what to read.
func countProjectEntries(project projectTypes.Project) int64 {
	var total int64
	ctx := context.Background()
	for _, form := range project.Forms {
		if count, err := projectDBService.GetEntriesCount(ctx, project.Ref, form.Ref); err == nil {
			total += count
		}
		for _, input := range form.Inputs {
			if input.Type != projectTypes.INPUT_TYPE_BRANCH {
				continue
			}
			if count, err := projectDBService.GetBranchEntriesCount(ctx, project.Ref, form.Ref, input.Ref); err == nil {
				total += count
			}
		}
	}
	return total
}
