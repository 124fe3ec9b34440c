// Package mongodb implements the code and student repositories over a
// MongoDB document store. The core packages only see the repo interfaces,
// the driver never leaks past this boundary.
package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	codesCollection    = "access_codes"
	studentsCollection = "students"

	serverSelectionTimeout = 5 * time.Second
	connectTimeout         = 10 * time.Second
	socketTimeout          = 10 * time.Second
)

// Connect establishes and verifies a client connection. The ping guarantees
// a bad connection string fails at startup rather than on the first
// operation.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetConnectTimeout(connectTimeout).
		SetSocketTimeout(socketTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "[mongodb.Connect] mongo.Connect")
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "[mongodb.Connect] ping")
	}

	return client, nil
}

// EnsureIndexes creates the unique indexes backing the global uniqueness
// invariants: one code per ledger entry, one name per student.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(codesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "[mongodb.EnsureIndexes] access_codes.code")
	}

	_, err = db.Collection(studentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "[mongodb.EnsureIndexes] students.name")
	}

	return nil
}
