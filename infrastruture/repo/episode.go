package repo

import (
	"context"
	"errors"
	"fmt"

	dmn "github.com/beka-birhanu/vinom-sim/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EpisodeRepo handles the persistence of recorded episodes.
type EpisodeRepo struct {
	collection *mongo.Collection
}

// NewEpisodeRepo creates a new EpisodeRepo with the given MongoDB client, database name, and collection name.
func NewEpisodeRepo(client *mongo.Client, dbName, collectionName string) *EpisodeRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &EpisodeRepo{
		collection: collection,
	}
}

// EnsureIndexes creates the index Recent sorts on.
func (r *EpisodeRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	return err
}

// Save inserts or replaces an episode.
func (r *EpisodeRepo) Save(ctx context.Context, episode *dmn.Episode) error {
	filter := bson.M{"_id": episode.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, filter, episode, opts); err != nil {
		return fmt.Errorf("saving episode %s: %w", episode.ID, err)
	}
	return nil
}

// ByID retrieves an episode with its frames.
func (r *EpisodeRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Episode, error) {
	var episode dmn.Episode
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&episode); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrEpisodeNotFound
		}
		return nil, errors.New("unexpected error: " + err.Error())
	}
	return &episode, nil
}

// Recent returns the newest episodes without their frames.
func (r *EpisodeRepo) Recent(ctx context.Context, limit int64) ([]*dmn.Episode, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"frames": 0})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}
	defer cursor.Close(ctx)

	var episodes []*dmn.Episode
	if err := cursor.All(ctx, &episodes); err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}
	return episodes, nil
}
