package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pathakanu/chatmemo/internal/model"
)

// MongoStore implements Store using MongoDB collections.
type MongoStore struct {
	client     *mongo.Client
	reminders  *mongo.Collection
	deliveries *mongo.Collection
	users      *mongo.Collection
	groups     *mongo.Collection
}

// NewMongoStore connects, pings and prepares indexes.
func NewMongoStore(ctx context.Context, connectionString, databaseName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(databaseName)
	ms := &MongoStore{
		client:     client,
		reminders:  db.Collection("reminders"),
		deliveries: db.Collection("reminder_deliveries"),
		users:      db.Collection("users"),
		groups:     db.Collection("groups"),
	}
	if err := ms.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return ms, nil
}

func (ms *MongoStore) ensureIndexes(ctx context.Context) error {
	if _, err := ms.reminders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "datetime", Value: 1}},
	}); err != nil {
		return err
	}
	_, err := ms.deliveries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "reminder_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Client exposes the driver client for maintenance and tests.
func (ms *MongoStore) Client() *mongo.Client { return ms.client }

// CreateReminder upserts the new document with an update pipeline so that
// created_at is the server's $$NOW. The filter never matches a stored
// reminder, so an existing id fails with a duplicate key error instead of
// being overwritten. Values are wrapped in $literal so user text starting
// with '$' is never read as a field path.
func (ms *MongoStore) CreateReminder(ctx context.Context, r *model.Reminder) error {
	set := bson.D{
		{Key: "user_ids", Value: literal(r.UserIDs)},
		{Key: "datetime", Value: literal(r.Datetime)},
		{Key: "message", Value: literal(r.Message)},
		{Key: "important", Value: literal(r.Important)},
		{Key: "created_at", Value: "$$NOW"},
	}
	update := mongo.Pipeline{bson.D{{Key: "$set", Value: set}}}
	filter := bson.M{"_id": r.ID, "created_at": bson.M{"$exists": false}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored model.Reminder
	if err := ms.reminders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return err
	}
	r.CreatedAt = stored.CreatedAt
	return nil
}

func literal(v any) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}

func (ms *MongoStore) DueReminders(ctx context.Context, until string, limit int) ([]model.Reminder, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"datetime": bson.M{"$lte": until}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "reminder_deliveries",
			"localField":   "_id",
			"foreignField": "reminder_id",
			"as":           "deliveries",
		}}},
		{{Key: "$match", Value: bson.M{"deliveries": bson.M{"$size": 0}}}},
		{{Key: "$sort", Value: bson.D{{Key: "datetime", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{"deliveries": 0}}},
	}

	cursor, err := ms.reminders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var reminders []model.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

func (ms *MongoStore) RecordDelivery(ctx context.Context, d *model.Delivery) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := ms.deliveries.InsertOne(ctx, d)
	return err
}

func (ms *MongoStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := ms.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mongoNotFound(err)
	}
	return &user, nil
}

func (ms *MongoStore) GetGroup(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	if err := ms.groups.FindOne(ctx, bson.M{"_id": id}).Decode(&group); err != nil {
		return nil, mongoNotFound(err)
	}
	return &group, nil
}

// Close closes the MongoDB connection
func (ms *MongoStore) Close(ctx context.Context) error {
	return ms.client.Disconnect(ctx)
}

func mongoNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
