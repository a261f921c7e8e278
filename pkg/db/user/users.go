package user

import (
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
)

type User struct {
	UserID int64  `bson:"user_id" json:"user_id"`
	Email  string `bson:"email" json:"email"`
	Name   string `bson:"name,omitempty" json:"name,omitempty"`
}

// get user by id
func (dbService *UserDBService) GetUserByID(userID int64) (user User, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"user_id": userID,
	}

	err = dbService.collectionUsers().FindOne(ctx, filter).Decode(&user)
	return user, err
}

// ResolveEmail maps a user id to the account email for the created_by
// column; unresolvable users report "n/a".
func (dbService *UserDBService) ResolveEmail(userID int64) string {
	user, err := dbService.GetUserByID(userID)
	if err != nil || user.Email == "" {
		slog.Debug("could not resolve user email", slog.Int64("userID", userID))
		return "n/a"
	}
	return user.Email
}
