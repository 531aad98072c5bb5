// Package api provides the client for the dixit answering backend.
package api

// GJSON paths for reading backend replies.
// Answer paths are listed in priority order; the first non-empty string wins.
const (
	PathAnswer  = "answer"
	PathReply   = "reply"
	PathMessage = "message"
	PathOutput  = "output"

	PathSources     = "sources"
	PathSourceTitle = "title"
	PathSourceURL   = "url"
	PathSourceNote  = "note"
)

// AnswerPaths returns the answer field names in the order they are tried
func AnswerPaths() []string {
	return []string{PathAnswer, PathReply, PathMessage, PathOutput}
}
