package source

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"

	stageerrors "github.com/matzehuels/stageflow/pkg/errors"
)

// fakeRedis serves values from a map; failures[key] counts down transient
// errors before the value is returned.
type fakeRedis struct {
	values   map[string]string
	failures map[string]int
	calls    int
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.calls++
	if f.failures[key] > 0 {
		f.failures[key]--
		return redis.NewStringResult("", errors.New("connection reset by peer"))
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

const stagesJSON = `[
	{"id": 0, "node_name": "Lead", "parent_ids": []},
	{"id": 1, "node_name": "Qualified", "parent_ids": [0]}
]`

func TestRedisSource_Load(t *testing.T) {
	tests := []struct {
		name        string
		values      map[string]string
		currentKey  string
		wantCurrent string
	}{
		{
			name:   "stages only",
			values: map[string]string{"stages": stagesJSON},
		},
		{
			name:        "current from key",
			values:      map[string]string{"stages": stagesJSON, "current": "Qualified"},
			currentKey:  "current",
			wantCurrent: "Qualified",
		},
		{
			name:       "missing current key",
			values:     map[string]string{"stages": stagesJSON},
			currentKey: "current",
		},
		{
			name:        "wrapped payload",
			values:      map[string]string{"stages": `{"current":"Lead","stages":` + stagesJSON + `}`},
			wantCurrent: "Lead",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &RedisSource{client: &fakeRedis{values: tt.values}, key: "stages", currentKey: tt.currentKey}
			in, err := src.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if len(in.Stages) != 2 || in.Stages[1].Name != "Qualified" {
				t.Errorf("Stages = %+v", in.Stages)
			}
			if in.Current != tt.wantCurrent {
				t.Errorf("Current = %q, want %q", in.Current, tt.wantCurrent)
			}
		})
	}
}

func TestRedisSource_MissingKey(t *testing.T) {
	fake := &fakeRedis{values: map[string]string{}}
	src := &RedisSource{client: fake, key: "stages"}

	_, err := src.Load(context.Background())
	if !stageerrors.Is(err, stageerrors.ErrCodeNotFound) {
		t.Errorf("Load() error = %v, want NOT_FOUND", err)
	}
	if fake.calls != 1 {
		t.Errorf("calls = %d, missing keys must not be retried", fake.calls)
	}
}

func TestRedisSource_TransientFailure(t *testing.T) {
	fake := &fakeRedis{
		values:   map[string]string{"stages": stagesJSON},
		failures: map[string]int{"stages": 2},
	}
	src := &RedisSource{client: fake, key: "stages"}

	in, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(in.Stages) != 2 || fake.calls != 3 {
		t.Errorf("stages=%d calls=%d, want 2 stages after 3 calls", len(in.Stages), fake.calls)
	}
}

func TestRedisSource_PersistentFailure(t *testing.T) {
	fake := &fakeRedis{failures: map[string]int{"stages": 10}}
	src := &RedisSource{client: fake, key: "stages"}

	_, err := src.Load(context.Background())
	if !stageerrors.Is(err, stageerrors.ErrCodeNetwork) {
		t.Errorf("Load() error = %v, want NETWORK_ERROR", err)
	}
}

func TestRedisSource_InvalidPayload(t *testing.T) {
	src := &RedisSource{client: &fakeRedis{values: map[string]string{"stages": "not json"}}, key: "stages"}
	_, err := src.Load(context.Background())
	if !stageerrors.Is(err, stageerrors.ErrCodeInvalidFormat) {
		t.Errorf("Load() error = %v, want INVALID_FORMAT", err)
	}
}

func TestNewRedisSource_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  RedisConfig
		code stageerrors.Code
	}{
		{"empty key", RedisConfig{}, stageerrors.ErrCodeInvalidInput},
		{"key with spaces", RedisConfig{Key: "my stages"}, stageerrors.ErrCodeInvalidInput},
		{"bad current key", RedisConfig{Key: "stages", CurrentKey: "a\tb"}, stageerrors.ErrCodeInvalidInput},
		{"bad url", RedisConfig{Key: "stages", URL: "http://nope"}, stageerrors.ErrCodeInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRedisSource(context.Background(), tt.cfg)
			if !stageerrors.Is(err, tt.code) {
				t.Errorf("NewRedisSource() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRedisSource_CloseWithoutClient(t *testing.T) {
	if err := (&RedisSource{}).Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
