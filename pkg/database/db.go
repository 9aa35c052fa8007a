// Package database opens the configured document store.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/pantry/config"
	"github.com/shashiranjanraj/pantry/pkg/docstore"
)

// Open returns the store selected by STORE_DRIVER. The mongo driver is
// pinged before returning so a bad URI fails at startup.
func Open(ctx context.Context) (docstore.Store, error) {
	switch driver := config.StoreDriver(); driver {
	case "memory":
		return docstore.NewMemory(), nil
	case "mongo":
		db, err := ConnectMongo(ctx, config.MongoURI(), config.MongoDatabase())
		if err != nil {
			return nil, err
		}
		return docstore.NewMongo(db), nil
	default:
		return nil, fmt.Errorf("database: unsupported STORE_DRIVER %q (supported: mongo, memory)", driver)
	}
}

// ConnectMongo dials uri and configures the connection pool.
func ConnectMongo(ctx context.Context, uri, name string) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(25).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(2 * time.Minute).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return client.Database(name), nil
}
