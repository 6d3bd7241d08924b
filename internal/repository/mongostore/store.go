// Package mongostore implements the repositories on MongoDB. Token pairs are
// matched and cleared with FindOneAndUpdate so consumption is one atomic
// document operation.
package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

const (
	usersCollection   = "users"
	tasksCollection   = "tasks"
	ticketsCollection = "tickets"
)

// New wires the Mongo-backed repositories on db.
func New(db *mongo.Database) repository.Stores {
	return repository.Stores{
		Users:   &userRepository{coll: db.Collection(usersCollection)},
		Tasks:   &taskRepository{coll: db.Collection(tasksCollection)},
		Tickets: &ticketRepository{coll: db.Collection(ticketsCollection)},
		Close:   db.Client().Disconnect,
	}
}

// EnsureIndexes creates the unique and lookup indexes. Token fields are not
// TTL-indexed: a TTL index would delete the whole user document, so expiry is
// enforced in every query instead.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	userIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "manager", Value: 1}}},
		{Keys: bson.D{{Key: "email_verification_token", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "reset_password_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return err
	}
	taskIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "assigned_by", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
	}
	if _, err := db.Collection(tasksCollection).Indexes().CreateMany(ctx, taskIndexes); err != nil {
		return err
	}
	ticketIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
	}
	_, err := db.Collection(ticketsCollection).Indexes().CreateMany(ctx, ticketIndexes)
	return err
}

func mapMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return apperrors.ErrDuplicate
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			// 121: document failed schema validation
			if we.Code == 121 {
				return apperrors.ErrInvalid
			}
		}
	}
	return err
}

// lookupID parses an id used to find a record; a malformed id cannot match.
func lookupID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrNotFound
	}
	return oid, nil
}

// refID parses an id stored as a reference on a written record.
func refID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrInvalid
	}
	return oid, nil
}

func refIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := refID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

func optionalRef(id *string) (*primitive.ObjectID, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	oid, err := refID(*id)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

// filterIDs drops malformed ids instead of failing, for list filters.
func filterIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func findOptions(limit, offset int, sortField string, dir int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: dir}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	return opts
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func utcNow() time.Time { return time.Now().UTC() }
