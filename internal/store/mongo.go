package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kalagasite/internal/content"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore maps each logical collection onto a mongo collection and uses
// the document key as _id.
type MongoStore struct {
	db *mongo.Database
}

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{db: database}
}

func (m *MongoStore) Get(ctx context.Context, collection, key string) (content.Tree, error) {
	var raw bson.M
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": key}).Decode(&raw)
	if err != nil {
		return nil, classifyMongo(fmt.Sprintf("get %s/%s", collection, key), err)
	}
	_, fields, err := fromBSONDocument(raw)
	return fields, err
}

func (m *MongoStore) Set(ctx context.Context, collection, key string, value content.Tree) error {
	_, err := m.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": key},
		withID(key, value),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return classifyMongo(fmt.Sprintf("set %s/%s", collection, key), err)
	}
	return nil
}

func (m *MongoStore) Update(ctx context.Context, collection, key string, value content.Tree) error {
	set := bson.M{}
	for k, v := range value {
		if k != "_id" {
			set[k] = v
		}
	}
	res, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": key}, bson.M{"$set": set})
	if err != nil {
		return classifyMongo(fmt.Sprintf("update %s/%s", collection, key), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update %s/%s: %w", collection, key, ErrNotFound)
	}
	return nil
}

func (m *MongoStore) List(ctx context.Context, collection string) ([]Document, error) {
	return m.find(ctx, collection, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (m *MongoStore) Add(ctx context.Context, collection string, value content.Tree) (string, error) {
	id := uuid.NewString()
	if _, err := m.db.Collection(collection).InsertOne(ctx, withID(id, value)); err != nil {
		return "", classifyMongo("add "+collection, err)
	}
	return id, nil
}

func (m *MongoStore) Delete(ctx context.Context, collection, key string) error {
	res, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return classifyMongo(fmt.Sprintf("delete %s/%s", collection, key), err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, key, ErrNotFound)
	}
	return nil
}

func (m *MongoStore) QueryOrdered(ctx context.Context, collection, field string, dir Direction) ([]Document, error) {
	if !validField(field) {
		return nil, fmt.Errorf("query %s: invalid order field %q", collection, field)
	}
	order := 1
	if dir == Descending {
		order = -1
	}
	return m.find(ctx, collection,
		bson.M{field: bson.M{"$exists": true, "$ne": nil}},
		options.Find().SetSort(bson.D{{Key: field, Value: order}}),
	)
}

// Ping checks the primary is reachable.
func (m *MongoStore) Ping(ctx context.Context) error {
	if err := m.db.Client().Ping(ctx, nil); err != nil {
		return classifyMongo("ping", err)
	}
	return nil
}

func (m *MongoStore) find(ctx context.Context, collection string, filter bson.M, opts *options.FindOptions) ([]Document, error) {
	cur, err := m.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, classifyMongo("list "+collection, err)
	}
	defer cur.Close(ctx)

	out := []Document{}
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		id, fields, err := fromBSONDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		out = append(out, Document{ID: id, Fields: fields})
	}
	if err := cur.Err(); err != nil {
		return nil, classifyMongo("list "+collection, err)
	}
	return out, nil
}

func withID(id string, value content.Tree) bson.M {
	doc := bson.M{}
	for k, v := range value {
		doc[k] = v
	}
	doc["_id"] = id
	return doc
}

func fromBSONDocument(raw bson.M) (string, content.Tree, error) {
	id := fmt.Sprint(raw["_id"])
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		fields[k] = fromBSON(v)
	}
	tree, err := content.NormalizeTree(fields)
	return id, tree, err
}

// fromBSON 将驱动返回的 bson 类型转换为普通的 map/slice
func fromBSON(value any) any {
	switch v := value.(type) {
	case bson.M:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = fromBSON(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = fromBSON(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(v))
		for _, e := range v {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = fromBSON(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = fromBSON(item)
		}
		return out
	case primitive.DateTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	case primitive.ObjectID:
		return v.Hex()
	}
	return value
}

func classifyMongo(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && (serverErr.HasErrorCode(13) || serverErr.HasErrorCode(18)) {
		return fmt.Errorf("%s: %w: %v", op, ErrPermission, err)
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
