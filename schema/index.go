package schema

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDBIndexer struct {
	ctx      context.Context
	dbName   string
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDBIndexerWithClient(client *mongo.Client, dbName string) *MongoDBIndexer {
	return &MongoDBIndexer{
		ctx:      context.Background(),
		dbName:   dbName,
		Client:   client,
		Database: client.Database(dbName),
	}
}

func (m *MongoDBIndexer) createIndex(collection string, index mongo.IndexModel) error {
	c := m.Database.Collection(collection)
	_, err := c.Indexes().CreateOne(m.ctx, index)
	return err
}

// IndexAll - create the indexes of every collection
func (m *MongoDBIndexer) IndexAll() error {
	return m.IndexMonthlyCollection()
}

// IndexMonthlyCollection - one document per (combined key, month), plus lookups by state
func (m *MongoDBIndexer) IndexMonthlyCollection() error {
	if err := m.createIndex(MonthlyCollection, mongo.IndexModel{
		Keys: bson.D{
			{Key: "combined_key", Value: 1},
			{Key: "month_ts", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}

	return m.createIndex(MonthlyCollection, mongo.IndexModel{
		Keys: bson.D{
			{Key: "province_state", Value: 1},
			{Key: "month_ts", Value: 1},
		},
	})
}
