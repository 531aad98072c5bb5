package api

import (
	"testing"

	apierrors "github.com/dixit-research/dixit/internal/errors"
	"github.com/dixit-research/dixit/internal/models"
)

func TestNormalizeAnswerFields(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		want      string
		wantField string
	}{
		{"answer", `{"answer": "X"}`, "X", "answer"},
		{"reply", `{"reply": "X"}`, "X", "reply"},
		{"message", `{"message": "X"}`, "X", "message"},
		{"output", `{"output": "X"}`, "X", "output"},
		{"answer wins over reply", `{"reply": "R", "answer": "A"}`, "A", "answer"},
		{"empty answer falls through", `{"answer": "", "reply": "R"}`, "R", "reply"},
		{"whitespace answer is content", `{"answer": "  ", "message": "M"}`, "  ", "answer"},
		{"whitespace answer wins over reply", `{"answer": " ", "reply": "X"}`, " ", "answer"},
		{"non-string answer falls through", `{"answer": 42, "output": "O"}`, "O", "output"},
		{"object answer falls through", `{"answer": {"text": "x"}, "reply": "R"}`, "R", "reply"},
		{"raw text kept", `{"answer": "  line1\nline2 "}`, "  line1\nline2 ", "answer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeString(tt.body)
			if err != nil {
				t.Fatalf("NormalizeString() error = %v", err)
			}
			if got.Text != tt.want {
				t.Errorf("Text = %q, want %q", got.Text, tt.want)
			}
			if got.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", got.Field, tt.wantField)
			}
		})
	}
}

func TestNormalizeInvalidShape(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"answer": null}`,
		`{"answer": ""}`,
		`{"text": "nope"}`,
		`[]`,
		`"just a string"`,
		`42`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			_, err := NormalizeString(body)
			if !apierrors.IsInvalidShape(err) {
				t.Fatalf("expected InvalidResponseShape, got %v", err)
			}
			fields := apierrors.GetAttemptedFields(err)
			want := []string{"answer", "reply", "message", "output"}
			if len(fields) != len(want) {
				t.Fatalf("attempted = %v, want %v", fields, want)
			}
			for i := range want {
				if fields[i] != want[i] {
					t.Errorf("attempted[%d] = %q, want %q", i, fields[i], want[i])
				}
			}
		})
	}
}

func TestNormalizeMalformedJSON(t *testing.T) {
	for _, body := range []string{"", "<html>", `{"answer": "x"`} {
		_, err := NormalizeString(body)
		if !apierrors.IsBackendError(err) {
			t.Errorf("NormalizeString(%q) error = %v, want BackendError", body, err)
		}
	}
}

func TestNormalizeSources(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []models.Source
	}{
		{
			name: "single url source",
			body: `{"answer": "X", "sources": [{"title": "A", "url": "http://u"}]}`,
			want: []models.Source{{Title: "A", URL: "http://u"}},
		},
		{
			name: "missing sources",
			body: `{"answer": "X"}`,
			want: []models.Source{},
		},
		{
			name: "non-array sources",
			body: `{"answer": "X", "sources": "http://u"}`,
			want: []models.Source{},
		},
		{
			name: "null sources",
			body: `{"answer": "X", "sources": null}`,
			want: []models.Source{},
		},
		{
			name: "default title and note",
			body: `{"answer": "X", "sources": [{"note": "p. 12"}, {"title": "", "url": "http://v"}]}`,
			want: []models.Source{
				{Title: "Source", Note: "p. 12"},
				{Title: "Source", URL: "http://v"},
			},
		},
		{
			name: "non-object elements skipped",
			body: `{"answer": "X", "sources": ["x", 1, {"title": "B"}]}`,
			want: []models.Source{{Title: "B"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeString(tt.body)
			if err != nil {
				t.Fatalf("NormalizeString() error = %v", err)
			}
			if got.Sources == nil {
				t.Fatal("Sources must never be nil")
			}
			if len(got.Sources) != len(tt.want) {
				t.Fatalf("Sources = %+v, want %+v", got.Sources, tt.want)
			}
			for i := range tt.want {
				if got.Sources[i] != tt.want[i] {
					t.Errorf("Sources[%d] = %+v, want %+v", i, got.Sources[i], tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	body := []byte(`{"reply": "X", "sources": [{"title": "A", "url": "http://u"}]}`)
	first, err := Normalize(body)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Normalize(body)
		if err != nil {
			t.Fatal(err)
		}
		if again.Text != first.Text || len(again.Sources) != len(first.Sources) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}
