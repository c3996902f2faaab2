package mgo

import (
	"context"
	"sync"

	mgo "github.com/anandbobba/Innovex-Service/data/database/mgo/mongoutil"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	mu     sync.RWMutex
	client *mgo.Client
)

// Init connects synchronously; startup fails fast if the store is
// unreachable, so there is no async ready-channel dance here.
func Init(ctx context.Context, cfg *mgo.Config) error {
	cli, err := mgo.NewMongoDB(ctx, cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	client = cli
	mu.Unlock()
	return nil
}

func GetDB() *mongo.Database {
	mu.RLock()
	defer mu.RUnlock()
	if client == nil {
		panic("mongo not initialized, call Init first")
	}
	return client.GetDB()
}

func Close(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		return nil
	}
	err := client.GetDB().Client().Disconnect(ctx)
	client = nil
	return err
}
