package turnclient_test

import (
	"reflect"
	"testing"

	"roborail-assistant/internal/domain/turn"
	"roborail-assistant/pkg/turnclient"
)

func TestDedupeAnnotations_FirstSeenWins(t *testing.T) {
	input := []turn.Annotation{
		{Type: turn.AnnotationFileCitation, FileID: "file_1", Title: "first"},
		{Type: turn.AnnotationURLCitation, URL: "https://a.test", Title: "link"},
		{Type: turn.AnnotationFileCitation, FileID: "file_1", Title: "duplicate"},
		{Type: turn.AnnotationFileCitation, FileID: "file_2", Title: "second"},
	}

	out := turnclient.DedupeAnnotations(input)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	if out[0].Title != "first" {
		t.Errorf("first occurrence replaced: %+v", out[0])
	}
	wantOrder := []string{"file_1", "", "file_2"}
	for i, want := range wantOrder {
		if out[i].FileID != want {
			t.Errorf("out[%d].FileID = %q, want %q", i, out[i].FileID, want)
		}
	}
}

func TestDedupeAnnotations_Idempotent(t *testing.T) {
	input := []turn.Annotation{
		{Type: turn.AnnotationFileCitation, FileID: "file_1"},
		{Type: turn.AnnotationFileCitation, FileID: "file_1"},
		{Type: turn.AnnotationURLCitation, URL: "https://a.test"},
	}

	once := turnclient.DedupeAnnotations(input)
	twice := turnclient.DedupeAnnotations(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedupe not idempotent: %+v vs %+v", once, twice)
	}
}

func TestDedupeAnnotations_DistinctTypesSameFile(t *testing.T) {
	input := []turn.Annotation{
		{Type: turn.AnnotationFileCitation, FileID: "file_1"},
		{Type: turn.AnnotationContainerFileCitation, FileID: "file_1"},
	}

	if out := turnclient.DedupeAnnotations(input); len(out) != 2 {
		t.Errorf("len = %d, want 2: type is part of identity", len(out))
	}
}

func TestMergeAnnotations(t *testing.T) {
	existing := []turn.Annotation{
		{Type: turn.AnnotationFileCitation, FileID: "file_1", Title: "kept"},
	}
	incoming := []turn.Annotation{
		{Type: turn.AnnotationFileCitation, FileID: "file_1", Title: "ignored"},
		{Type: turn.AnnotationFileCitation, FileID: "file_2", Title: "added"},
	}

	out := turnclient.MergeAnnotations(existing, incoming)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Title != "kept" || out[1].Title != "added" {
		t.Errorf("merge = %+v", out)
	}
}
