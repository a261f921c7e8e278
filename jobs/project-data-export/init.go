package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/epicollect5/epicollect5-server-sub010/pkg/db"
	projectDB "github.com/epicollect5/epicollect5-server-sub010/pkg/db/project"
	userDB "github.com/epicollect5/epicollect5-server-sub010/pkg/db/user"
	"github.com/epicollect5/epicollect5-server-sub010/pkg/export"
	"github.com/epicollect5/epicollect5-server-sub010/pkg/export/entries"
	"github.com/epicollect5/epicollect5-server-sub010/pkg/utils"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_PROJECT_DB_USERNAME = "PROJECT_DB_USERNAME"
	ENV_PROJECT_DB_PASSWORD = "PROJECT_DB_PASSWORD"
	ENV_USER_DB_USERNAME    = "USER_DB_USERNAME"
	ENV_USER_DB_PASSWORD    = "USER_DB_PASSWORD"
)

type ProjectExportTask struct {
	ProjectSlug string `json:"project_slug" yaml:"project_slug"`
	Format      string `json:"format" yaml:"format"`
	MapIndex    int    `json:"map_index" yaml:"map_index"`
}

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		ProjectDB db.DBConfigYaml `json:"project_db" yaml:"project_db"`
		UserDB    db.DBConfigYaml `json:"user_db" yaml:"user_db"`
	} `json:"db_configs" yaml:"db_configs"`

	APIRootURL string `json:"api_root_url" yaml:"api_root_url"`
	ExportPath string `json:"export_path" yaml:"export_path"`

	ProjectExports struct {
		RetentionDays int                 `json:"retention_days" yaml:"retention_days"`
		OverrideOld   bool                `json:"override_old" yaml:"override_old"`
		ExportTasks   []ProjectExportTask `json:"export_tasks" yaml:"export_tasks"`
	} `json:"project_exports" yaml:"project_exports"`
}

var conf config

var (
	projectDBService *projectDB.ProjectDBService
	userDBService    *userDB.UserDBService
	exportService    *export.Service
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(conf.Logging)

	// Override secrets from environment variables
	secretsOverride()

	// init db
	initDBs()

	if conf.ProjectExports.RetentionDays < 1 {
		err := fmt.Errorf("retention days must be greater than 0")
		slog.Error("Error reading config", slog.String("error", err.Error()))
		panic(err)
	}

	if conf.ExportPath == "" {
		err := fmt.Errorf("export path must be set to define where to store the export files")
		slog.Error("Error reading config", slog.String("error", err.Error()))
		panic(err)
	}

	if _, err := os.Stat(conf.ExportPath); os.IsNotExist(err) {
		// create folder
		err = os.MkdirAll(conf.ExportPath, os.ModePerm)
		if err != nil {
			slog.Error("Error creating export path", slog.String("error", err.Error()))
			panic(err)
		}
		slog.Info("Created export path", slog.String("path", conf.ExportPath))
	}

	exportService = export.NewService(
		projectDBService,
		userDBService,
		entries.APIMediaURLBuilder{APIRoot: conf.APIRootURL},
		conf.ExportPath,
	)
}

func secretsOverride() {
	// Override secrets from environment variables

	if dbUsername := os.Getenv(ENV_PROJECT_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.ProjectDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_PROJECT_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.ProjectDB.Password = dbPassword
	}

	if dbUsername := os.Getenv(ENV_USER_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.UserDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_USER_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.UserDB.Password = dbPassword
	}
}

func initDBs() {
	var err error
	projectDBService, err = projectDB.NewProjectDBService(db.DBConfigFromYamlObj(conf.DBConfigs.ProjectDB))
	if err != nil {
		slog.Error("Error connecting to Project DB", slog.String("error", err.Error()))
		panic(err)
	}

	userDBService, err = userDB.NewUserDBService(db.DBConfigFromYamlObj(conf.DBConfigs.UserDB))
	if err != nil {
		slog.Error("Error connecting to User DB", slog.String("error", err.Error()))
		panic(err)
	}
}
