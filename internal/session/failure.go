package session

import (
	"errors"
	"fmt"
	"strings"

	apierrors "github.com/dixit-research/dixit/internal/errors"
)

// Markers that identify the failure kind inside a diagnostic bot message
const (
	MarkerUnreachable  = "[backend unreachable]"
	MarkerBackendError = "[backend error]"
	MarkerInvalidShape = "[invalid response]"
)

// FailureText renders err as the bot message shown in the conversation:
// an explanation, a kind marker and the raw detail.
func FailureText(err error) string {
	var explanation, marker string

	switch apierrors.Kind(err) {
	case apierrors.KindUnreachable:
		marker = MarkerUnreachable
		explanation = "I can't reach the backend. Check the configured endpoint and that the server is running."
		if apierrors.IsTimeout(err) {
			explanation = "The backend did not answer in time. It may be overloaded or the timeout may be too short."
		}
	case apierrors.KindBackend:
		marker = MarkerBackendError
		explanation = "The backend answered with an error."
		if status := apierrors.GetHTTPStatus(err); status > 0 && !isParseError(err) {
			explanation = fmt.Sprintf("The backend answered with HTTP %d.", status)
		} else if isParseError(err) {
			explanation = "The backend reply could not be parsed as JSON."
		}
	case apierrors.KindInvalidShape:
		marker = MarkerInvalidShape
		fields := apierrors.GetAttemptedFields(err)
		explanation = fmt.Sprintf("The backend reply has no usable answer field (%s).", strings.Join(fields, "/"))
	default:
		explanation = "Something went wrong while contacting the backend."
	}

	var sb strings.Builder
	sb.WriteString(explanation)
	sb.WriteString("\n\n")
	if marker != "" {
		sb.WriteString(marker)
		sb.WriteString(" ")
	}
	sb.WriteString("Detail: ")
	if err != nil {
		sb.WriteString(err.Error())
	} else {
		sb.WriteString("unknown error")
	}
	return sb.String()
}

func isParseError(err error) bool {
	var be *apierrors.BackendError
	return errors.As(err, &be) && be.Parse
}
