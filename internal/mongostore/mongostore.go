package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/atenjiha/MAHSA-LEARN/internal/store"
)

// Store keeps one collection per kind with a unique index on the external
// "id" field. Mongo's own _id is never exposed.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, kind := range store.Kinds {
		_, err := s.collection(kind).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return store.Transport("ensure index", err)
		}
	}
	return nil
}

func (s *Store) collection(kind store.Kind) *mongo.Collection {
	return s.db.Collection(string(kind))
}

var withoutObjectID = bson.D{{Key: "_id", Value: 0}}

func (s *Store) FindAll(ctx context.Context, kind store.Kind) ([][]byte, error) {
	opts := options.Find().
		SetProjection(withoutObjectID).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.collection(kind).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, store.Transport("find all", err)
	}
	defer cursor.Close(ctx)

	docs := [][]byte{}
	for cursor.Next(ctx) {
		doc, err := toJSON(cursor.Current)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, store.Transport("find all", err)
	}
	return docs, nil
}

func (s *Store) FindOne(ctx context.Context, kind store.Kind, id string) ([]byte, error) {
	raw, err := s.collection(kind).FindOne(ctx, bson.D{{Key: "id", Value: id}},
		options.FindOne().SetProjection(withoutObjectID)).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Transport("find one", err)
	}
	return toJSON(raw)
}

func (s *Store) Insert(ctx context.Context, kind store.Kind, id string, doc []byte) ([]byte, error) {
	value, err := fromJSON(doc)
	if err != nil {
		return nil, err
	}
	if _, err := s.collection(kind).InsertOne(ctx, value); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, store.ErrDuplicateID
		}
		return nil, store.Transport("insert", err)
	}
	return doc, nil
}

func (s *Store) Replace(ctx context.Context, kind store.Kind, id string, doc []byte) ([]byte, error) {
	value, err := fromJSON(doc)
	if err != nil {
		return nil, err
	}
	result, err := s.collection(kind).ReplaceOne(ctx, bson.D{{Key: "id", Value: id}}, value)
	if err != nil {
		return nil, store.Transport("replace", err)
	}
	if result.MatchedCount == 0 {
		return nil, store.ErrNotFound
	}
	return doc, nil
}

func (s *Store) Delete(ctx context.Context, kind store.Kind, id string) error {
	result, err := s.collection(kind).DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		return store.Transport("delete", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAll(ctx context.Context, kind store.Kind) error {
	if _, err := s.collection(kind).DeleteMany(ctx, bson.D{}); err != nil {
		return store.Transport("delete all", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return store.Transport("ping", err)
	}
	return nil
}

// Documents cross the gateway as relaxed extended JSON so int64
// timestamps and nested arrays come back as plain JSON numbers and lists.
func toJSON(raw bson.Raw) ([]byte, error) {
	doc, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, store.Transport("decode document", err)
	}
	return doc, nil
}

func fromJSON(doc []byte) (bson.D, error) {
	var value bson.D
	if err := bson.UnmarshalExtJSON(doc, false, &value); err != nil {
		return nil, store.Transport("encode document", err)
	}
	return value, nil
}
