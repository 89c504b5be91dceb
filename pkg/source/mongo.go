package source

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	stageerrors "github.com/matzehuels/stageflow/pkg/errors"
	"github.com/matzehuels/stageflow/pkg/graph"
	"github.com/matzehuels/stageflow/pkg/stage"
)

// DefaultSortField orders stage documents when MongoConfig.SortField is empty.
const DefaultSortField = "id"

// MongoConfig configures a [MongoSource].
type MongoConfig struct {
	URI        string // mongodb:// connection string
	Database   string
	Collection string
	// SortField fixes the input order of stages; layout ordering within a
	// layer follows it.
	SortField string
	// Current is the current stage name. Documents carry no current marker.
	Current string
}

func (c *MongoConfig) validate() error {
	if c.URI == "" {
		return stageerrors.New(stageerrors.ErrCodeInvalidOption, "mongo uri is required")
	}
	for _, v := range []string{c.Database, c.Collection} {
		if err := stageerrors.ValidateKey(v); err != nil {
			return err
		}
	}
	if c.SortField == "" {
		c.SortField = DefaultSortField
	}
	return stageerrors.ValidateStageName(c.Current)
}

// MongoSource reads stage documents from a MongoDB collection. Each document
// has the fields id, node_name and parent_ids; other fields are ignored.
type MongoSource struct {
	client     *mongo.Client
	collection *mongo.Collection
	sortField  string
	current    string
}

// NewMongoSource connects to MongoDB and verifies the connection with a ping.
func NewMongoSource(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, stageerrors.Wrap(stageerrors.ErrCodeInvalidOption, err, "mongo connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, stageerrors.Wrap(stageerrors.ErrCodeNetwork, err, "ping mongo")
	}
	return &MongoSource{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		sortField:  cfg.SortField,
		current:    cfg.Current,
	}, nil
}

// Close disconnects the client.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Load implements [Source].
func (s *MongoSource) Load(ctx context.Context) (graph.Input, error) {
	return observe(ctx, KindMongo, func() (graph.Input, error) {
		var stages []stage.Node
		err := RetryWithBackoff(ctx, func() error {
			var err error
			stages, err = s.find(ctx)
			return err
		})
		if err != nil {
			return graph.Input{}, err
		}
		if len(stages) == 0 {
			return graph.Input{}, stageerrors.New(stageerrors.ErrCodeNotFound,
				"collection %q has no stage documents", s.collection.Name())
		}
		return graph.Input{Stages: stages, Current: s.current}, nil
	})
}

func (s *MongoSource) find(ctx context.Context) ([]stage.Node, error) {
	opts := options.Find().SetSort(bson.D{{Key: s.sortField, Value: 1}})
	cur, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, classifyMongoError(err, "find stages")
	}
	defer cur.Close(ctx)

	var stages []stage.Node
	for cur.Next(ctx) {
		n, err := decodeStage(cur.Current)
		if err != nil {
			return nil, err
		}
		stages = append(stages, n)
	}
	if err := cur.Err(); err != nil {
		return nil, classifyMongoError(err, "iterate stages")
	}
	return stages, nil
}

// decodeStage decodes one stage document.
func decodeStage(raw bson.Raw) (stage.Node, error) {
	var n stage.Node
	if err := bson.Unmarshal(raw, &n); err != nil {
		return stage.Node{}, stageerrors.Wrap(stageerrors.ErrCodeInvalidFormat, err, "decode stage document")
	}
	return n, nil
}

func classifyMongoError(err error, op string) error {
	wrapped := stageerrors.Wrap(stageerrors.ErrCodeNetwork, err, "%s", op)
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(wrapped)
	}
	return wrapped
}
