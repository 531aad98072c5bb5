package api

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	apierrors "github.com/dixit-research/dixit/internal/errors"
	"github.com/dixit-research/dixit/internal/models"
)

var errInvalidJSON = errors.New("body is not valid JSON")

// fieldResult is the outcome of a single accessor: either a value or nothing
type fieldResult struct {
	value string
	ok    bool
}

// fieldAccessor reads one candidate answer field from a parsed payload
type fieldAccessor struct {
	name string
	get  func(gjson.Result) fieldResult
}

// stringField accepts the value at path only when it is a non-empty JSON
// string. Whitespace-only text counts as content.
func stringField(path string) fieldAccessor {
	return fieldAccessor{
		name: path,
		get: func(doc gjson.Result) fieldResult {
			v := doc.Get(path)
			if v.Type != gjson.String || v.Str == "" {
				return fieldResult{}
			}
			return fieldResult{value: v.Str, ok: true}
		},
	}
}

var answerAccessors = func() []fieldAccessor {
	paths := AnswerPaths()
	accessors := make([]fieldAccessor, len(paths))
	for i, p := range paths {
		accessors[i] = stringField(p)
	}
	return accessors
}()

// Normalize extracts the canonical answer and source list from a backend reply.
// It fails with a parse BackendError when body is not JSON and with an
// InvalidResponseShapeError when no answer field holds a non-empty string.
func Normalize(body []byte) (*models.Answer, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError(0, "", errInvalidJSON)
	}
	return normalizeResult(gjson.ParseBytes(body))
}

// NormalizeString is Normalize for string payloads
func NormalizeString(body string) (*models.Answer, error) {
	return Normalize([]byte(body))
}

func normalizeResult(doc gjson.Result) (*models.Answer, error) {
	attempted := make([]string, 0, len(answerAccessors))
	for _, acc := range answerAccessors {
		attempted = append(attempted, acc.name)
		if res := acc.get(doc); res.ok {
			return &models.Answer{
				Text:    res.value,
				Sources: extractSources(doc),
				Field:   acc.name,
			}, nil
		}
	}
	return nil, apierrors.NewInvalidResponseShapeError(attempted)
}

// extractSources reads the optional sources array. Anything other than an
// array yields an empty list; non-object elements are skipped.
func extractSources(doc gjson.Result) []models.Source {
	sources := []models.Source{}

	list := doc.Get(PathSources)
	if !list.IsArray() {
		return sources
	}

	list.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}

		title := strings.TrimSpace(item.Get(PathSourceTitle).String())
		if title == "" {
			title = models.DefaultSourceName
		}

		sources = append(sources, models.Source{
			Title: title,
			URL:   strings.TrimSpace(item.Get(PathSourceURL).String()),
			Note:  strings.TrimSpace(item.Get(PathSourceNote).String()),
		})
		return true
	})

	return sources
}
