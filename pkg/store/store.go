// Package store persists computed chart geometry in MongoDB.
//
// A stored chart is the full geometry document plus its title and creation
// time, addressable by a generated UUID. The server uses this to re-render
// previously built charts without recomputing or re-uploading the rows.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/matzehuels/barstack/pkg/errors"
	"github.com/matzehuels/barstack/pkg/render/column"
)

// StoredChart is one persisted chart document.
type StoredChart struct {
	ID        string           `bson:"_id" json:"id"`
	Title     string           `bson:"title,omitempty" json:"title,omitempty"`
	Geometry  *column.Geometry `bson:"geometry" json:"geometry"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
}

// ChartStore saves and loads chart documents in one MongoDB collection.
type ChartStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect opens a MongoDB connection and returns a store using the given
// database and collection.
func Connect(ctx context.Context, uri, database, collection string) (*ChartStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &ChartStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Save persists the geometry and returns the generated chart ID.
func (s *ChartStore) Save(ctx context.Context, title string, g *column.Geometry) (string, error) {
	doc := StoredChart{
		ID:        uuid.NewString(),
		Title:     title,
		Geometry:  g,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// Load retrieves a chart document by ID.
func (s *ChartStore) Load(ctx context.Context, id string) (*StoredChart, error) {
	var doc StoredChart
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.New(apperrors.ErrCodeChartNotFound, "chart %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes a chart document. Deleting a missing chart is not an error.
func (s *ChartStore) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Close disconnects from MongoDB.
func (s *ChartStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
