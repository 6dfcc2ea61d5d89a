package gateway

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"kyri56xcaesar/teamops/internal/utils"
)

// Mongo keeps one driver collection per gateway collection, with the document
// id as a string _id. BatchWrite uses an ordered bulk of replace-upserts.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("could not connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Mongo{client: client, db: client.Database(database)}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toBSON(fields map[string]any) bson.M {
	doc := bson.M{}
	for k, v := range fields {
		doc[k] = v
	}
	delete(doc, "_id")
	return doc
}

func (m *Mongo) GetCollection(ctx context.Context, collection string) ([]Record, error) {
	cur, err := m.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Record
	for cur.Next(ctx) {
		raw := bson.M{}
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		id, _ := raw["_id"].(string)
		delete(raw, "_id")

		fields := make(map[string]any, len(raw))
		for k, v := range raw {
			fields[k] = v
		}
		out = append(out, Record{ID: id, Fields: fields})
	}
	return out, cur.Err()
}

func (m *Mongo) SetDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := m.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": id}, toBSON(fields), options.Replace().SetUpsert(true))
	return err
}

func (m *Mongo) UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	res, err := m.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id}, bson.M{"$set": toBSON(fields)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func (m *Mongo) DeleteDocument(ctx context.Context, collection, id string) error {
	_, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (m *Mongo) BatchWrite(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("batch write to %s: record without id", collection)
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": r.ID}).
			SetReplacement(toBSON(r.Fields)).
			SetUpsert(true))
	}

	_, err := m.db.Collection(collection).BulkWrite(ctx, models,
		options.BulkWrite().SetOrdered(true))
	return err
}

func (m *Mongo) BatchDelete(ctx context.Context, collection string, ids []string) error {
	_, err := m.db.Collection(collection).DeleteMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (m *Mongo) DeleteByQuery(ctx context.Context, collection, field string, value any) error {
	_, err := m.db.Collection(collection).DeleteMany(ctx, bson.M{field: value})
	return err
}

func (m *Mongo) AddDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id, err := utils.GenerateRandomString(assignedIDLength)
	if err != nil {
		return "", err
	}

	doc := toBSON(fields)
	doc["_id"] = id
	if _, err := m.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return id, nil
}
