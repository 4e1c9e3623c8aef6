package mongostore

import (
	"context"
	"errors"

	"hostelfix/backend/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// wrapError maps driver errors onto the storage sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return storage.ErrDuplicate
	}
	return err
}

func byID(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.D) (*T, error) {
	var result T
	if err := col.FindOne(ctx, filter).Decode(&result); err != nil {
		return nil, wrapError(err)
	}
	return &result, nil
}

func findMany[T any](ctx context.Context, col *mongo.Collection, filter bson.D, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func insertOne(ctx context.Context, col *mongo.Collection, doc any) error {
	_, err := col.InsertOne(ctx, doc)
	return wrapError(err)
}

// findOneAndSet applies $set to the document with the given id and decodes
// the document as it was before or after the update.
func findOneAndSet[T any](ctx context.Context, col *mongo.Collection, id string, set bson.D, after bool) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	if after {
		opts.SetReturnDocument(options.After)
	}

	var result T
	err := col.FindOneAndUpdate(ctx, byID(id), bson.D{{Key: "$set", Value: set}}, opts).Decode(&result)
	if err != nil {
		return nil, wrapError(err)
	}
	return &result, nil
}

func findOneAndDelete[T any](ctx context.Context, col *mongo.Collection, id string) (*T, error) {
	var result T
	if err := col.FindOneAndDelete(ctx, byID(id)).Decode(&result); err != nil {
		return nil, wrapError(err)
	}
	return &result, nil
}
