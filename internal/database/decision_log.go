package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const decisionCollectionName = "decisions"

// MongoDecisionLog implements DecisionLogger using MongoDB. It owns its
// client connection; callers close it on shutdown.
type MongoDecisionLog struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect opens a MongoDB connection for the decision log and verifies it
// with a ping.
func Connect(ctx context.Context, uri, dbName string) (*MongoDecisionLog, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	var result bson.M
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Decode(&result); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Println("Connected to MongoDB, decision log enabled.")

	return &MongoDecisionLog{
		client:     client,
		collection: client.Database(dbName).Collection(decisionCollectionName),
	}, nil
}

// Close disconnects the underlying client.
func (m *MongoDecisionLog) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// LogDecision writes one decision entry to the database.
func (m *MongoDecisionLog) LogDecision(ctx context.Context, entry DecisionEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if entry.DecidedAt.IsZero() {
		entry.DecidedAt = time.Now()
	}

	if _, err := m.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert decision log for level %d: %w", entry.LevelID, err)
	}
	return nil
}

// NopDecisionLog is wired instead of Mongo when no database is configured.
type NopDecisionLog struct{}

// LogDecision discards the entry.
func (NopDecisionLog) LogDecision(ctx context.Context, entry DecisionEntry) error {
	return nil
}
