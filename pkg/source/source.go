// Package source loads stage records from the stores that hold them.
//
// # Overview
//
// The layout engine never reaches into a store itself: a [Source] is asked
// for a complete snapshot of the stage records ([graph.Input]) and the
// result is handed to the engine as plain data. Three sources exist:
//
//   - [FileSource]: a JSON or TOML file on disk
//   - [RedisSource]: a key holding the JSON stage array, as written by the
//     datalabel cache, plus an optional key holding the current stage name
//   - [MongoSource]: a collection of stage documents
//
// # Errors
//
// Missing keys, files and empty collections are NOT_FOUND. Transient network
// failures are retried with exponential backoff ([RetryWithBackoff]) and
// surface as NETWORK_ERROR once the attempts are exhausted. Undecodable
// records are INVALID_FORMAT.
//
// # Usage
//
//	src, err := source.NewRedisSource(ctx, source.RedisConfig{
//	    URL: "redis://localhost:6379/0",
//	    Key: "datalabel:project_stage",
//	})
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//	in, err := src.Load(ctx)
package source

import (
	"context"
	"time"

	"github.com/matzehuels/stageflow/pkg/graph"
	"github.com/matzehuels/stageflow/pkg/observability"
)

// Source kinds, as reported to observability hooks.
const (
	KindFile  = "file"
	KindRedis = "redis"
	KindMongo = "mongo"
)

// Source loads a snapshot of stage records.
type Source interface {
	Load(ctx context.Context) (graph.Input, error)
}

// observe wraps a load with source hooks.
func observe(ctx context.Context, kind string, load func() (graph.Input, error)) (graph.Input, error) {
	hooks := observability.Source()
	hooks.OnLoadStart(ctx, kind)
	start := time.Now()
	in, err := load()
	hooks.OnLoadComplete(ctx, kind, len(in.Stages), time.Since(start), err)
	return in, err
}
