package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// NextOrderSequence atomically allocates the next order number for the given
// year. The $inc upsert makes concurrent submissions impossible to collide,
// unlike the old read-count-then-format scheme.
func NextOrderSequence(ctx context.Context, db *mongo.Database, year int) (int64, error) {
	key := fmt.Sprintf("commands-%02d", year%100)

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDoc
	err := db.Collection("counters").FindOneAndUpdate(
		ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}

	return doc.Seq, nil
}

// FormatOrderID renders the human order reference, e.g. ORD-26-0001.
func FormatOrderID(year int, seq int64) string {
	return fmt.Sprintf("ORD-%02d-%04d", year%100, seq)
}

// NextOrderID allocates and formats a reference for the current year.
func NextOrderID(ctx context.Context, db *mongo.Database, now time.Time) (string, error) {
	seq, err := NextOrderSequence(ctx, db, now.Year())
	if err != nil {
		return "", err
	}
	return FormatOrderID(now.Year(), seq), nil
}
