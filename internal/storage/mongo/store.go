// Package mongo implements the domain store on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campus_rentals/internal/domain"
)

const (
	colProperties    = "properties"
	colUsers         = "users"
	colSavedSearches = "savedSearches"
	colFavorites     = "favorites"
	colViewings      = "viewings"
)

type Store struct {
	client *driver.Client
	db     *driver.Database
}

var _ domain.Store = (*Store)(nil)

// Open connects, pings and makes sure the indexes exist.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := driver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := New(client, dbName)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func New(client *driver.Client, dbName string) *Store {
	return &Store{client: client, db: client.Database(dbName)}
}

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Store) c(name string) *driver.Collection { return s.db.Collection(name) }

func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]driver.IndexModel{
		colProperties: {
			{Keys: bson.D{{Key: "deletedAt", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "landlordId", Value: 1}}},
		},
		colSavedSearches: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "emailNotifications", Value: 1}}},
		},
		colFavorites: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "propertyId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colViewings: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "landlordId", Value: 1}}},
		},
		colReviews: {
			{Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colInquiries: {
			{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "landlordId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colMessages: {
			{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "participants", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
	}
	for col, models := range specs {
		if _, err := s.c(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", col, err)
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, driver.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}

// normalize converts decoded BSON containers into the plain map and slice
// shapes domain decoders accept.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.M:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	case primitive.A:
		return normalizeSlice(t)
	case []any:
		return normalizeSlice(t)
	}
	return v
}

func normalizeMap(in map[string]any) map[string]any {
	m := make(map[string]any, len(in))
	for k, e := range in {
		m[k] = normalize(e)
	}
	return m
}

func normalizeSlice(in []any) []any {
	out := make([]any, len(in))
	for i, e := range in {
		out[i] = normalize(e)
	}
	return out
}
