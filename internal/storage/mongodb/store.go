// Package mongodb stores each resource in its own collection, one document
// per record keyed by the record id.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/deptsite/deptcms/config"
	"github.com/deptsite/deptcms/internal/core/filter"
	"github.com/deptsite/deptcms/internal/core/record"
	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/internal/storage/docsql"
	"github.com/deptsite/deptcms/pkg/apperror"
)

var _ record.Store = (*Store)(nil)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// Connect dials cfg.MongoURI and verifies the deployment is reachable
// within cfg.Timeout.
func Connect(ctx context.Context, cfg *config.StorageConfig) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetConnectTimeout(cfg.Timeout).
		SetServerSelectionTimeout(cfg.Timeout).
		SetMaxPoolSize(uint64(cfg.MaxOpenConns))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: connect mongodb: %v", apperror.ErrStorageUnavailable, err)
	}

	s := &Store{client: client, db: client.Database(cfg.MongoDatabase), now: time.Now}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) collection(def *schema.ResourceDefinition) *mongo.Collection {
	return s.db.Collection(def.Name)
}

func (s *Store) Insert(ctx context.Context, def *schema.ResourceDefinition, rec *record.Record) error {
	_, err := s.collection(def).InsertOne(ctx, toDocument(rec))
	return mapError(def, "insert", err)
}

func (s *Store) Get(ctx context.Context, def *schema.ResourceDefinition, id string) (*record.Record, error) {
	var doc bson.M
	err := s.collection(def).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(def, "get", err)
	}
	return fromDocument(def, doc)
}

func (s *Store) Find(ctx context.Context, def *schema.ResourceDefinition, req *filter.Request) ([]*record.Record, error) {
	opts := options.Find().SetSort(BuildSort(def, req.Sort))
	if req.Limit > 0 {
		opts.SetLimit(int64(req.Limit))
	}

	cur, err := s.collection(def).Find(ctx, BuildFilter(def, req), opts)
	if err != nil {
		return nil, mapError(def, "find", err)
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapError(def, "find", err)
	}

	records := make([]*record.Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := fromDocument(def, doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) Replace(ctx context.Context, def *schema.ResourceDefinition, rec *record.Record) (bool, error) {
	res, err := s.collection(def).ReplaceOne(ctx, bson.D{{Key: "_id", Value: rec.ID}}, toDocument(rec))
	if err != nil {
		return false, mapError(def, "replace", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) Delete(ctx context.Context, def *schema.ResourceDefinition, id string) (bool, error) {
	res, err := s.collection(def).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, mapError(def, "delete", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) Increment(ctx context.Context, def *schema.ResourceDefinition, id, field string, by int64) (*record.Record, error) {
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: field, Value: by}}},
		{Key: "$set", Value: bson.D{{Key: schema.FieldUpdatedAt, Value: s.now().UTC()}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bson.M
	err := s.collection(def).FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(def, "increment", err)
	}
	return fromDocument(def, doc)
}

func (s *Store) ExistsWithValue(ctx context.Context, def *schema.ResourceDefinition, field string, value any, excludeID string) (bool, error) {
	query := bson.D{{Key: field, Value: value}}
	if excludeID != "" {
		query = append(query, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}})
	}

	n, err := s.collection(def).CountDocuments(ctx, query, options.Count().SetLimit(1))
	if err != nil {
		return false, mapError(def, "exists", err)
	}
	return n > 0, nil
}

// EnsureIndexes creates a unique index per unique field. The partial filter
// keeps documents without the field out of the index.
func (s *Store) EnsureIndexes(ctx context.Context, defs []*schema.ResourceDefinition) error {
	for _, def := range defs {
		for _, f := range def.UniqueFields() {
			model := mongo.IndexModel{
				Keys: bson.D{{Key: f.Name, Value: 1}},
				Options: options.Index().
					SetName(docsql.IndexName(def.Name, f.Name)).
					SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: f.Name, Value: bson.D{{Key: "$exists", Value: true}}}}),
			}
			if _, err := s.collection(def).Indexes().CreateOne(ctx, model); err != nil {
				return fmt.Errorf("create unique index on %s.%s: %w", def.Name, f.Name, err)
			}
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: ping mongodb: %v", apperror.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func mapError(def *schema.ResourceDefinition, op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		if f, ok := duplicateField(def, err.Error()); ok {
			return &apperror.DuplicateKeyError{Field: f.Name, Label: f.DisplayName()}
		}
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %s %s: %v", apperror.ErrStorageUnavailable, op, def.Name, err)
	}
	return fmt.Errorf("%s %s: %w", op, def.Name, err)
}

// duplicateField finds the unique field whose index is named in an E11000
// message.
func duplicateField(def *schema.ResourceDefinition, msg string) (schema.FieldSpec, bool) {
	fields := def.UniqueFields()
	for _, f := range fields {
		if strings.Contains(msg, "index: "+docsql.IndexName(def.Name, f.Name)) {
			return f, true
		}
	}
	if len(fields) == 1 {
		return fields[0], true
	}
	return schema.FieldSpec{}, false
}

func toDocument(rec *record.Record) bson.D {
	doc := bson.D{{Key: "_id", Value: rec.ID}}
	for _, name := range sortedKeys(rec.Fields) {
		v := rec.Fields[name]
		if t, ok := v.(time.Time); ok {
			v = t.UTC()
		}
		doc = append(doc, bson.E{Key: name, Value: v})
	}
	return append(doc,
		bson.E{Key: schema.FieldIsActive, Value: rec.IsActive},
		bson.E{Key: schema.FieldCreatedAt, Value: rec.CreatedAt.UTC()},
		bson.E{Key: schema.FieldUpdatedAt, Value: rec.UpdatedAt.UTC()},
	)
}

func fromDocument(def *schema.ResourceDefinition, doc bson.M) (*record.Record, error) {
	raw := make(map[string]any, len(doc))
	for k, v := range doc {
		raw[k] = plain(v)
	}

	id, ok := raw["_id"].(string)
	if !ok {
		return nil, fmt.Errorf("decode %s: unexpected _id %v", def.Name, raw["_id"])
	}
	rec := &record.Record{ID: id, Resource: def.Name}
	rec.IsActive, _ = raw[schema.FieldIsActive].(bool)
	rec.CreatedAt, _ = raw[schema.FieldCreatedAt].(time.Time)
	rec.UpdatedAt, _ = raw[schema.FieldUpdatedAt].(time.Time)

	for _, k := range []string{"_id", schema.FieldIsActive, schema.FieldCreatedAt, schema.FieldUpdatedAt} {
		delete(raw, k)
	}
	rec.Fields = def.FromStorage(raw)
	return rec, nil
}

// plain converts driver types into the Go values the schema layer expects.
func plain(v any) any {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = plain(item)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = plain(e.Value)
		}
		return out
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
