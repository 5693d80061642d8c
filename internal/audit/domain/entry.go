// Package domain defines audit entries and metadata redaction.
package domain

import (
	"strings"
	"time"
)

// Entry statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RedactedPlaceholder replaces values of sensitive metadata fields.
const RedactedPlaceholder = "[REDACTED]"

// Entry is one audit record. Entries are written as NDJSON, one object per
// line.
type Entry struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	ClientID       string         `json:"client_id"`
	SessionID      string         `json:"session_id,omitempty"`
	Operation      string         `json:"operation"`
	Resource       string         `json:"resource,omitempty"`
	Status         string         `json:"status"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	ResponseTimeMs int64          `json:"response_time_ms,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// RedactMetadata returns a copy of the metadata with the value of every field
// whose name contains one of the sensitive substrings replaced by the
// placeholder. Matching is case-insensitive and descends into nested objects
// and arrays.
func RedactMetadata(metadata map[string]any, sensitive []string) map[string]any {
	if len(metadata) == 0 || len(sensitive) == 0 {
		return metadata
	}

	result := make(map[string]any, len(metadata))
	for key, value := range metadata {
		if isSensitiveField(key, sensitive) {
			result[key] = RedactedPlaceholder
			continue
		}
		result[key] = redactValue(value, sensitive)
	}
	return result
}

func redactValue(value any, sensitive []string) any {
	switch v := value.(type) {
	case map[string]any:
		return RedactMetadata(v, sensitive)
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = redactValue(item, sensitive)
		}
		return result
	default:
		return value
	}
}

func isSensitiveField(field string, sensitive []string) bool {
	lower := strings.ToLower(field)
	for _, s := range sensitive {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
