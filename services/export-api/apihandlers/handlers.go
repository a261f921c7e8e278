package apihandlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	projectDB "github.com/epicollect5/epicollect5-server-sub010/pkg/db/project"
	"github.com/epicollect5/epicollect5-server-sub010/pkg/export"
)

func HealthCheckHandle(c *gin.Context) {
	serviceInfos := make(map[string]interface{})
	infos, err := os.ReadFile("serviceInfos.json")
	if err != nil {
		slog.Debug("Error reading serviceInfos.json", slog.String("error", err.Error()))
	} else {
		err = json.Unmarshal(infos, &serviceInfos)
		if err != nil {
			slog.Debug("Error unmarshalling serviceInfos.json", slog.String("error", err.Error()))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"serviceInfos": serviceInfos,
	})
}

type HttpEndpoints struct {
	tokenSignKey  string
	projectDBConn *projectDB.ProjectDBService
	exportService *export.Service
}

func NewHTTPHandler(
	tokenSignKey string,
	projectDBConn *projectDB.ProjectDBService,
	exportService *export.Service,
) *HttpEndpoints {
	return &HttpEndpoints{
		tokenSignKey:  tokenSignKey,
		projectDBConn: projectDBConn,
		exportService: exportService,
	}
}
