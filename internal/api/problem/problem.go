package problem

import (
	"encoding/json"
	"net/http"
	"strings"
)

const contentType = "application/problem+json"

// typeNamespace roots every error slug under the project's documented error
// catalog.
const typeNamespace = "https://errors.bagayi.app/"

// Details is the RFC 7807 body every error response carries. RequestID echoes
// the trace id so a client report can be matched to server logs.
type Details struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail"`
	Instance  string `json:"instance"`
	RequestID string `json:"request_id"`
}

// Type expands a slug like "transfer/same-account" into its catalog URI.
// Absolute URIs and about:blank pass through unchanged, so callers can hand
// Write either form.
func Type(slug string) string {
	if slug == "" {
		return "about:blank"
	}
	if slug == "about:blank" || strings.HasPrefix(slug, "http") {
		return slug
	}
	return typeNamespace + slug
}

// Write sends an RFC 7807 response. problemType may be a bare slug or a full
// URI; an empty title falls back to the standard status text.
func Write(w http.ResponseWriter, r *http.Request, status int, problemType, title, detail string) {
	if title == "" {
		title = http.StatusText(status)
	}
	instance := ""
	requestID := ""
	if r != nil {
		instance = r.URL.Path
		requestID = r.Header.Get("X-Trace-ID")
	}
	if requestID == "" {
		requestID = w.Header().Get("X-Trace-ID")
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Details{
		Type:      Type(problemType),
		Title:     title,
		Status:    status,
		Detail:    detail,
		Instance:  instance,
		RequestID: requestID,
	})
}
