package source

import (
	"context"

	"github.com/matzehuels/stageflow/pkg/graph"
)

// FileSource reads stage records from a JSON or TOML file.
type FileSource struct {
	Path string
}

// Load implements [Source].
func (s FileSource) Load(ctx context.Context) (graph.Input, error) {
	return observe(ctx, KindFile, func() (graph.Input, error) {
		return graph.ReadInputFile(s.Path)
	})
}
