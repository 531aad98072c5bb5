package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestUnreachableError(t *testing.T) {
	err := NewUnreachableError("http://localhost:8000/api/ask", errors.New("connection refused"))

	expected := "backend unreachable at http://localhost:8000/api/ask (no response): connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrBackendUnreachable) {
		t.Error("Expected error to match ErrBackendUnreachable")
	}
	if errors.Is(err, ErrBackendError) {
		t.Error("Expected error not to match ErrBackendError")
	}
	if IsTimeout(err) {
		t.Error("Expected plain unreachable error not to be a timeout")
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("http://x/chat", context.DeadlineExceeded)

	if !IsUnreachable(err) {
		t.Error("Expected timeout to be classified as unreachable")
	}
	if !IsTimeout(err) {
		t.Error("Expected IsTimeout to be true")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("Expected cause to be unwrappable")
	}
}

func TestBackendError(t *testing.T) {
	tests := []struct {
		name string
		err  *BackendError
		want string
	}{
		{
			name: "status with body",
			err:  NewStatusError(500, "/api/ask", "internal failure\n"),
			want: "backend error [500] at /api/ask — internal failure",
		},
		{
			name: "status without body",
			err:  NewStatusError(404, "/chat", "  "),
			want: "backend error [404] at /chat",
		},
		{
			name: "parse variant",
			err:  NewParseError(200, "/api/ask", errors.New("invalid character '<'")),
			want: "backend error at /api/ask: unparseable response body: invalid character '<'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !IsBackendError(tt.err) {
				t.Error("Expected IsBackendError to be true")
			}
		})
	}
}

func TestInvalidResponseShapeError(t *testing.T) {
	attempted := []string{"answer", "reply", "message", "output"}
	err := NewInvalidResponseShapeError(attempted)
	attempted[0] = "mutated"

	want := "invalid response shape: missing answer/reply/message/output field"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if got := GetAttemptedFields(err); len(got) != 4 || got[0] != "answer" {
		t.Errorf("GetAttemptedFields() = %v", got)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"unreachable", NewUnreachableError("e", nil), KindUnreachable},
		{"wrapped unreachable", fmt.Errorf("send: %w", NewUnreachableError("e", nil)), KindUnreachable},
		{"status", NewStatusError(502, "e", ""), KindBackend},
		{"parse", NewParseError(200, "e", nil), KindBackend},
		{"shape", NewInvalidResponseShapeError([]string{"answer"}), KindInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorKindString(t *testing.T) {
	if KindUnreachable.String() != "BackendUnreachable" {
		t.Errorf("unexpected label %q", KindUnreachable.String())
	}
	if KindBackend.String() != "BackendError" {
		t.Errorf("unexpected label %q", KindBackend.String())
	}
	if KindInvalidShape.String() != "InvalidResponseShape" {
		t.Errorf("unexpected label %q", KindInvalidShape.String())
	}
	if ErrorKind(42).String() != "Unknown" {
		t.Errorf("unexpected label %q", ErrorKind(42).String())
	}
}

func TestAccessors(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewStatusError(503, "/api/ask", "busy"))

	if GetHTTPStatus(err) != 503 {
		t.Errorf("GetHTTPStatus() = %d, want 503", GetHTTPStatus(err))
	}
	if GetResponseBody(err) != "busy" {
		t.Errorf("GetResponseBody() = %q, want busy", GetResponseBody(err))
	}
	if GetEndpoint(err) != "/api/ask" {
		t.Errorf("GetEndpoint() = %q", GetEndpoint(err))
	}
	if GetEndpoint(NewUnreachableError("/chat", nil)) != "/chat" {
		t.Error("Expected endpoint from unreachable error")
	}
	if GetHTTPStatus(errors.New("x")) != 0 || GetResponseBody(errors.New("x")) != "" {
		t.Error("Expected zero values for unrelated errors")
	}
}
