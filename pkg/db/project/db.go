package project

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/epicollect5/epicollect5-server-sub010/pkg/db"
)

// collection names
const (
	COLLECTION_NAME_PROJECTS       = "projects"
	COLLECTION_NAME_ENTRIES        = "entries"
	COLLECTION_NAME_BRANCH_ENTRIES = "branch_entries"
)

type ProjectDBService struct {
	DBClient *mongo.Client
	timeout  int
	DBName   string
}

func NewProjectDBService(configs db.DBConfig) (*ProjectDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)
	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	projectDBSc := &ProjectDBService{
		DBClient: dbClient,
		timeout:  configs.Timeout,
		DBName:   configs.DBName,
	}

	if err := projectDBSc.ensureIndexes(); err != nil {
		slog.Error("Error ensuring indexes for project DB", slog.String("error", err.Error()))
	}

	return projectDBSc, nil
}

func (dbService *ProjectDBService) collectionProjects() *mongo.Collection {
	return dbService.DBClient.Database(dbService.DBName).Collection(COLLECTION_NAME_PROJECTS)
}

func (dbService *ProjectDBService) collectionEntries() *mongo.Collection {
	return dbService.DBClient.Database(dbService.DBName).Collection(COLLECTION_NAME_ENTRIES)
}

func (dbService *ProjectDBService) collectionBranchEntries() *mongo.Collection {
	return dbService.DBClient.Database(dbService.DBName).Collection(COLLECTION_NAME_BRANCH_ENTRIES)
}

func (dbService *ProjectDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *ProjectDBService) ensureIndexes() error {
	slog.Debug("Ensuring indexes for project DB")

	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionProjects().Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	)
	if err != nil {
		slog.Error("Error creating index for projects", slog.String("error", err.Error()))
	}

	entryIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "project_ref", Value: 1},
				{Key: "form_ref", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "entry_uuid", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "uploaded_at", Value: 1}},
		},
	}
	if _, err := dbService.collectionEntries().Indexes().CreateMany(ctx, entryIndexes); err != nil {
		slog.Error("Error creating indexes for entries", slog.String("error", err.Error()))
	}

	branchEntryIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "project_ref", Value: 1},
				{Key: "form_ref", Value: 1},
				{Key: "owner_input_ref", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "owner_entry_uuid", Value: 1}},
		},
	}
	if _, err := dbService.collectionBranchEntries().Indexes().CreateMany(ctx, branchEntryIndexes); err != nil {
		slog.Error("Error creating indexes for branch entries", slog.String("error", err.Error()))
	}

	return nil
}
