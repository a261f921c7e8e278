package project

import (
	"go.mongodb.org/mongo-driver/bson"

	projectTypes "github.com/epicollect5/epicollect5-server-sub010/pkg/project/types"
)

// get project by slug
func (dbService *ProjectDBService) GetProjectBySlug(slug string) (project projectTypes.Project, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"slug": slug,
	}

	err = dbService.collectionProjects().FindOne(ctx, filter).Decode(&project)
	return project, err
}

// get project by ref
func (dbService *ProjectDBService) GetProjectByRef(ref string) (project projectTypes.Project, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"ref": ref,
	}

	err = dbService.collectionProjects().FindOne(ctx, filter).Decode(&project)
	return project, err
}
