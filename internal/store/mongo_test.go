package store

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFromBSONDocumentConvertsDriverTypes(t *testing.T) {
	when := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	raw := bson.M{
		"_id": "about",
		"hero": bson.D{
			{Key: "title", Value: "About"},
			{Key: "count", Value: int32(3)},
		},
		"items":   bson.A{"a", bson.M{"n": int64(2)}},
		"created": primitive.NewDateTimeFromTime(when),
	}

	id, fields, err := fromBSONDocument(raw)
	if err != nil {
		t.Fatalf("fromBSONDocument returned error: %v", err)
	}
	if id != "about" {
		t.Fatalf("unexpected id %q", id)
	}

	want := map[string]any{
		"hero":    map[string]any{"title": "About", "count": float64(3)},
		"items":   []any{"a", map[string]any{"n": float64(2)}},
		"created": "2024-05-01T10:00:00Z",
	}
	if diff := cmp.Diff(want, map[string]any(fields)); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
}

func TestWithIDDoesNotMutateInput(t *testing.T) {
	value := map[string]any{"name": "x"}
	doc := withID("k1", value)
	if doc["_id"] != "k1" {
		t.Fatalf("expected _id to be set, got %v", doc["_id"])
	}
	if _, ok := value["_id"]; ok {
		t.Fatal("input document was mutated")
	}
}
