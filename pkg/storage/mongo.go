package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/buildingmap/pkg/building"
)

// MongoBackend upserts documents into a database. The location host names
// the collection and the path the document _id.
type MongoBackend struct {
	db *mongo.Database
}

// NewMongoBackend stores into db.
func NewMongoBackend(db *mongo.Database) *MongoBackend {
	return &MongoBackend{db: db}
}

// mongoRecord is the stored shape. Vertex tuples are kept as BSON
// sub-documents rather than arrays.
type mongoRecord struct {
	ID      string        `bson:"_id"`
	Name    string        `bson:"name"`
	SavedAt time.Time     `bson:"saved_at"`
	Map     *building.Map `bson:"map"`
}

func mongoTarget(loc Location) (collection, id string, err error) {
	if loc.Host == "" || loc.Path == "" {
		return "", "", fmt.Errorf("%w: want mongodb://<collection>/<id>, got %q", ErrEmptyKey, loc.Raw)
	}
	return loc.Host, loc.Path, nil
}

// Store implements Backend.
func (b *MongoBackend) Store(ctx context.Context, loc Location, m *building.Map) (int, error) {
	coll, id, err := mongoTarget(loc)
	if err != nil {
		return 0, err
	}
	rec := mongoRecord{ID: id, Name: m.Name, SavedAt: time.Now().UTC(), Map: m}
	raw, err := bson.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("encode bson: %w", err)
	}
	_, err = b.db.Collection(coll).ReplaceOne(ctx, bson.M{"_id": id}, bson.Raw(raw), options.Replace().SetUpsert(true))
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

var _ Backend = (*MongoBackend)(nil)
