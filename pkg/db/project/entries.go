package project

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	projectTypes "github.com/epicollect5/epicollect5-server-sub010/pkg/project/types"
)

func sortDirection(sortOrder string) int {
	if strings.EqualFold(sortOrder, "DESC") {
		return -1
	}
	return 1
}

// get entries count by form
func (dbService *ProjectDBService) GetEntriesCount(ctx context.Context, projectRef string, formRef string) (int64, error) {
	filter := bson.M{
		"project_ref": projectRef,
		"form_ref":    formRef,
	}
	return dbService.collectionEntries().CountDocuments(ctx, filter)
}

// get one page of form entries
func (dbService *ProjectDBService) GetEntries(
	ctx context.Context,
	projectRef string,
	formRef string,
	sortBy string,
	sortOrder string,
	page int64,
	limit int64,
) (entries []projectTypes.EntryRow, err error) {
	filter := bson.M{
		"project_ref": projectRef,
		"form_ref":    formRef,
	}
	return dbService.findEntryPage(ctx, dbService.collectionEntries(), filter, sortBy, sortOrder, page, limit)
}

// get branch entries count for the owning branch input
func (dbService *ProjectDBService) GetBranchEntriesCount(ctx context.Context, projectRef string, formRef string, ownerInputRef string) (int64, error) {
	filter := bson.M{
		"project_ref":     projectRef,
		"form_ref":        formRef,
		"owner_input_ref": ownerInputRef,
	}
	return dbService.collectionBranchEntries().CountDocuments(ctx, filter)
}

// get one page of branch entries for the owning branch input
func (dbService *ProjectDBService) GetBranchEntries(
	ctx context.Context,
	projectRef string,
	formRef string,
	ownerInputRef string,
	sortBy string,
	sortOrder string,
	page int64,
	limit int64,
) (entries []projectTypes.EntryRow, err error) {
	filter := bson.M{
		"project_ref":     projectRef,
		"form_ref":        formRef,
		"owner_input_ref": ownerInputRef,
	}
	return dbService.findEntryPage(ctx, dbService.collectionBranchEntries(), filter, sortBy, sortOrder, page, limit)
}

func (dbService *ProjectDBService) findEntryPage(
	ctx context.Context,
	collection *mongo.Collection,
	filter bson.M,
	sortBy string,
	sortOrder string,
	page int64,
	limit int64,
) (entries []projectTypes.EntryRow, err error) {
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * limit

	opts := options.Find().
		SetSort(bson.M{sortBy: sortDirection(sortOrder)}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return entries, err
	}
	defer cursor.Close(ctx)

	err = cursor.All(ctx, &entries)
	return entries, err
}
