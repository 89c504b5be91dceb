package source

import (
	"reflect"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	stageerrors "github.com/matzehuels/stageflow/pkg/errors"
	"github.com/matzehuels/stageflow/pkg/stage"
)

func TestDecodeStage(t *testing.T) {
	tests := []struct {
		name string
		doc  any
		want stage.Node
	}{
		{
			name: "int32 fields",
			doc:  bson.M{"id": int32(3), "node_name": "Demo", "parent_ids": bson.A{int32(1), int32(2)}},
			want: stage.Node{ID: 3, Name: "Demo", ParentIDs: []int{1, 2}},
		},
		{
			name: "int64 fields and extra keys",
			doc:  bson.D{{Key: "_id", Value: "abc"}, {Key: "id", Value: int64(7)}, {Key: "node_name", Value: "Won"}, {Key: "color", Value: "green"}},
			want: stage.Node{ID: 7, Name: "Won"},
		},
		{
			name: "round trip of a stage record",
			doc:  stage.Node{ID: 1, Name: "Lead", ParentIDs: []int{}},
			want: stage.Node{ID: 1, Name: "Lead", ParentIDs: []int{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(tt.doc)
			if err != nil {
				t.Fatal(err)
			}
			got, err := decodeStage(raw)
			if err != nil {
				t.Fatalf("decodeStage() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeStage() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeStage_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  bson.M
		code stageerrors.Code
	}{
		{"string id", bson.M{"id": "three"}, stageerrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(tt.doc)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := decodeStage(raw); !stageerrors.Is(err, tt.code) {
				t.Errorf("decodeStage() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDecodeStage_FreeFormLabel(t *testing.T) {
	name := "Prüfung\n" + strings.Repeat("審", 300)
	raw, err := bson.Marshal(bson.M{"id": int32(4), "node_name": name, "parent_ids": bson.A{}})
	if err != nil {
		t.Fatal(err)
	}
	n, err := decodeStage(raw)
	if err != nil {
		t.Fatalf("decodeStage() error: %v", err)
	}
	if n.Name != name {
		t.Errorf("Name = %q, want %q", n.Name, name)
	}
}

func TestMongoConfigValidate(t *testing.T) {
	cfg := MongoConfig{URI: "mongodb://localhost", Database: "crm", Collection: "stages"}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() error: %v", err)
	}
	if cfg.SortField != DefaultSortField {
		t.Errorf("SortField = %q, want %q", cfg.SortField, DefaultSortField)
	}

	bad := []MongoConfig{
		{Database: "crm", Collection: "stages"},
		{URI: "mongodb://localhost", Collection: "stages"},
		{URI: "mongodb://localhost", Database: "crm", Collection: "my stages"},
	}
	for _, c := range bad {
		if err := c.validate(); err == nil {
			t.Errorf("validate(%+v) expected error", c)
		}
	}
}
