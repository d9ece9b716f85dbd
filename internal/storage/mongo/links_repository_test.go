package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/microfix/dashboard/internal/processing/links"
)

func TestUpdateSet(t *testing.T) {
	title := "New"
	var nilTags []string

	tests := []struct {
		name string
		in   links.UpdateLinkInput
		want bson.M
	}{
		{"empty", links.UpdateLinkInput{}, bson.M{}},
		{"title only", links.UpdateLinkInput{Title: &title}, bson.M{"title": "New"}},
		{"nil tags become empty", links.UpdateLinkInput{Tags: &nilTags}, bson.M{"tags": []string{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := updateSet(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				gv, ok := got[k]
				if !ok {
					t.Fatalf("missing key %q", k)
				}
				if s, isSlice := v.([]string); isSlice {
					gs, _ := gv.([]string)
					if gs == nil || len(gs) != len(s) {
						t.Errorf("%s: got %v, want %v", k, gv, v)
					}
					continue
				}
				if gv != v {
					t.Errorf("%s: got %v, want %v", k, gv, v)
				}
			}
		})
	}
}

func TestMapLinkDoc_NilTags(t *testing.T) {
	l := mapLinkDoc(linkDoc{ID: "id", Title: "t", URL: "u", CreatedAt: 7})
	if l.Tags == nil || len(l.Tags) != 0 {
		t.Errorf("expected empty tags, got %v", l.Tags)
	}
	if l.CreatedAt != 7 {
		t.Errorf("expected createdAt 7, got %d", l.CreatedAt)
	}
}
