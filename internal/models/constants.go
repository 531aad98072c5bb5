// Package models contains data types and constants for the dixit backend contract.
package models

import (
	"fmt"
	"strings"
)

// Default endpoints for the answering backend
const (
	DefaultEndpoint   = "http://localhost:8000"
	PathAsk           = "/api/ask"
	PathChat          = "/chat"
	PathHealth        = "/api/health"
	DefaultUserAgent  = "dixit-cli"
	DefaultBotName    = "DIXIT"
	DefaultUserName   = "You"
	DefaultSourceName = "Source"
)

// DefaultGreeting seeds every conversation
const DefaultGreeting = "Hello! Give me your research topic (problem statement, keywords, constraints) and I will propose a structured synthesis with citations."

// Backend identifies which request contract the remote service speaks.
// Only one contract is active per client.
type Backend string

const (
	// BackendAsk posts {"question": ...} to /api/ask
	BackendAsk Backend = "ask"
	// BackendChat posts {"message": ...} to /chat
	BackendChat Backend = "chat"
)

// PayloadKey returns the JSON key the question is sent under
func (b Backend) PayloadKey() string {
	if b == BackendChat {
		return "message"
	}
	return "question"
}

// Path returns the request path for the backend
func (b Backend) Path() string {
	if b == BackendChat {
		return PathChat
	}
	return PathAsk
}

// String returns the backend name
func (b Backend) String() string {
	return string(b)
}

// ParseBackend converts a config or flag value into a Backend
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ask", "question":
		return BackendAsk, nil
	case "chat", "message":
		return BackendChat, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected ask or chat)", name)
	}
}

// AvailableBackends returns the supported backend names
func AvailableBackends() []string {
	return []string{string(BackendAsk), string(BackendChat)}
}

// DefaultHeaders returns the headers sent with every backend request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   DefaultUserAgent,
	}
}
