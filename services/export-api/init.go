package main

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/epicollect5/epicollect5-server-sub010/pkg/apihelpers"
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
	ENV_SERVER_USER_JWT_KEY = "SERVER_USER_JWT_SIGN_KEY"
)

type Config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`
		MTLS         struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	// JWT configs
	ServerUserJWTSignKey   string        `json:"server_user_jwt_sign_key" yaml:"server_user_jwt_sign_key"`
	ServerUserJWTExpiresIn time.Duration `json:"server_user_jwt_expires_in" yaml:"server_user_jwt_expires_in"`

	// DB configs
	DBConfigs struct {
		ProjectDB db.DBConfigYaml `json:"project_db" yaml:"project_db"`
		UserDB    db.DBConfigYaml `json:"user_db" yaml:"user_db"`
	} `json:"db_configs" yaml:"db_configs"`

	// Export configs
	APIRootURL string `json:"api_root_url" yaml:"api_root_url"`
	ExportPath string `json:"export_path" yaml:"export_path"`
}

var conf Config

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

	if conf.ExportPath == "" {
		slog.Error("export path must be set to define where to write export files")
		panic("export path missing")
	}
	if _, err := os.Stat(conf.ExportPath); os.IsNotExist(err) {
		if err := os.MkdirAll(conf.ExportPath, os.ModePerm); err != nil {
			slog.Error("Error creating export path", slog.String("error", err.Error()))
			panic(err)
		}
		slog.Info("Created export path", slog.String("path", conf.ExportPath))
	}

	// init dbs and the export pipeline
	initDBs()

	exportService = export.NewService(
		projectDBService,
		userDBService,
		entries.APIMediaURLBuilder{APIRoot: conf.APIRootURL},
		conf.ExportPath,
	)
}

func secretsOverride() {
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
	if signKey := os.Getenv(ENV_SERVER_USER_JWT_KEY); signKey != "" {
		conf.ServerUserJWTSignKey = signKey
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
