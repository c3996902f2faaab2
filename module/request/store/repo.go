package store

import (
	"context"
	"time"

	"github.com/anandbobba/Innovex-Service/module/request/model"
	"github.com/anandbobba/Innovex-Service/tools/errs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collection = "requests"

type Repo struct {
	DB *mongo.Database
}

// List returns every request, newest first. No pagination: the tool serves
// one office floor, not the internet.
func (r *Repo) List(ctx context.Context) ([]model.Request, error) {
	cur, err := r.DB.Collection(collection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errs.WrapMsg(err, "list requests")
	}
	defer cur.Close(ctx)

	out := make([]model.Request, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.WrapMsg(err, "decode requests")
	}
	return out, nil
}

// Insert persists a new request and fills in its assigned id.
func (r *Repo) Insert(ctx context.Context, req *model.Request) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	res, err := r.DB.Collection(collection).InsertOne(ctx, req)
	if err != nil {
		return errs.WrapMsg(err, "insert request")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid
	}
	return nil
}

// Update applies a partial $set and returns the document as stored
// afterwards. Last writer wins; there is no concurrency check.
func (r *Repo) Update(ctx context.Context, id string, set bson.M) (*model.Request, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.ErrNotFound.WithDetail("request " + id)
	}
	after := options.After
	res := r.DB.Collection(collection).FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)
	var doc model.Request
	if err := res.Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound.WithDetail("request " + id)
		}
		return nil, errs.WrapMsg(err, "update request id=%s", id)
	}
	return &doc, nil
}

// Delete removes the document and returns it, so the caller can still route
// the deletion notice to the right rooms.
func (r *Repo) Delete(ctx context.Context, id string) (*model.Request, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.ErrNotFound.WithDetail("request " + id)
	}
	res := r.DB.Collection(collection).FindOneAndDelete(ctx, bson.M{"_id": oid})
	var doc model.Request
	if err := res.Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrNotFound.WithDetail("request " + id)
		}
		return nil, errs.WrapMsg(err, "delete request id=%s", id)
	}
	return &doc, nil
}
