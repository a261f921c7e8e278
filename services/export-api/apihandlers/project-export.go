package apihandlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	mw "github.com/epicollect5/epicollect5-server-sub010/pkg/apihelpers/middlewares"
	"github.com/epicollect5/epicollect5-server-sub010/pkg/export"
	"github.com/epicollect5/epicollect5-server-sub010/pkg/export/entries"
)

func (h *HttpEndpoints) AddProjectExportAPI(rg *gin.RouterGroup) {
	projectsGroup := rg.Group("/projects")

	projectsGroup.Use(mw.GetAndValidateServerUserJWT(h.tokenSignKey))
	{
		projectsGroup.GET("/:projectSlug/export-entries", h.getExportEntries)
	}
}

func (h *HttpEndpoints) getExportEntries(c *gin.Context) {
	projectSlug := c.Param("projectSlug")

	format := c.DefaultQuery("format", entries.FORMAT_CSV)
	if format != entries.FORMAT_CSV && format != entries.FORMAT_JSON {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format"})
		return
	}

	mapIndex := 0
	if rawMapIndex := c.Query("map_index"); rawMapIndex != "" {
		parsed, err := strconv.Atoi(rawMapIndex)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid map_index"})
			return
		}
		mapIndex = parsed
	}

	project, err := h.projectDBConn.GetProjectBySlug(projectSlug)
	if err != nil {
		slog.Warn("project not found", slog.String("projectSlug", projectSlug))
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	archivePath, err := h.exportService.ExportProject(c.Request.Context(), &project, export.Params{
		Format:    format,
		MapIndex:  mapIndex,
		SortBy:    c.DefaultQuery("sort_by", export.SORT_BY_DEFAULT),
		SortOrder: c.DefaultQuery("sort_order", export.SORT_ORDER_DEFAULT),
	})
	if err != nil {
		slog.Error("project export failed", slog.String("projectSlug", projectSlug), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	defer func() {
		if err := os.RemoveAll(filepath.Dir(archivePath)); err != nil {
			slog.Error("could not clean up export directory", slog.String("error", err.Error()))
		}
	}()

	c.FileAttachment(archivePath, filepath.Base(archivePath))
}
