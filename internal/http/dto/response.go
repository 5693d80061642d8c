package dto

import (
	"time"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
)

// CreateClientResponse contains the result of registering a client.
// SECURITY: the secret is only returned once and must be saved securely.
type CreateClientResponse struct {
	ID     string `json:"id"`
	Secret string `json:"secret"` //nolint:gosec // returned once on creation
}

// ClientResponse represents a client in API responses (excludes the
// credential hash).
type ClientResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapClientToResponse converts a domain client to an API response.
func MapClientToResponse(client *authDomain.Client) ClientResponse {
	return ClientResponse{
		ID:          client.ID,
		Description: client.Description,
		Status:      string(client.Status),
		CreatedAt:   client.CreatedAt,
		UpdatedAt:   client.UpdatedAt,
	}
}

// ListClientsResponse represents a paginated list of clients.
type ListClientsResponse struct {
	Data []ClientResponse `json:"data"`
}

// MapClientsToListResponse converts domain clients to a list API response.
func MapClientsToListResponse(clients []*authDomain.Client) ListClientsResponse {
	data := make([]ClientResponse, 0, len(clients))
	for _, client := range clients {
		data = append(data, MapClientToResponse(client))
	}
	return ListClientsResponse{Data: data}
}

// RuleResponse represents an access rule in API responses.
type RuleResponse struct {
	ClientID        string         `json:"client_id"`
	ResourcePattern string         `json:"resource_pattern"`
	Actions         []string       `json:"actions"`
	Conditions      map[string]any `json:"conditions,omitempty"`
}

// MapRuleToResponse converts a domain rule to an API response.
func MapRuleToResponse(rule *accessDomain.Rule) RuleResponse {
	return RuleResponse{
		ClientID:        rule.ClientID,
		ResourcePattern: rule.ResourcePattern,
		Actions:         rule.Actions,
		Conditions:      rule.Conditions,
	}
}

// ListRulesResponse represents a list of access rules.
type ListRulesResponse struct {
	Data []RuleResponse `json:"data"`
}

// MapRulesToListResponse converts domain rules to a list API response.
func MapRulesToListResponse(rules []*accessDomain.Rule) ListRulesResponse {
	data := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		data = append(data, MapRuleToResponse(rule))
	}
	return ListRulesResponse{Data: data}
}

// LimitResponse represents a rate-limit config in API responses.
type LimitResponse struct {
	ClientID          string `json:"client_id"`
	Operation         string `json:"operation"`
	RequestsPerMinute int    `json:"requests_per_minute"`
	Burst             int    `json:"burst"`
}

// MapLimitToResponse converts a domain limit config to an API response.
func MapLimitToResponse(config *ratelimitDomain.LimitConfig) LimitResponse {
	return LimitResponse{
		ClientID:          config.ClientID,
		Operation:         config.Operation,
		RequestsPerMinute: config.RequestsPerMinute,
		Burst:             config.Burst,
	}
}

// ListLimitsResponse represents a list of rate-limit configs.
type ListLimitsResponse struct {
	Data []LimitResponse `json:"data"`
}

// MapLimitsToListResponse converts domain limit configs to a list API
// response.
func MapLimitsToListResponse(configs []*ratelimitDomain.LimitConfig) ListLimitsResponse {
	data := make([]LimitResponse, 0, len(configs))
	for _, config := range configs {
		data = append(data, MapLimitToResponse(config))
	}
	return ListLimitsResponse{Data: data}
}

// AuditEntryResponse represents an audit entry in API responses.
type AuditEntryResponse struct {
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

// MapAuditEntriesToListResponse converts domain audit entries to a list API
// response.
func MapAuditEntriesToListResponse(entries []*auditDomain.Entry) ListAuditEntriesResponse {
	data := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, AuditEntryResponse{
			ID:             entry.ID,
			Timestamp:      entry.Timestamp,
			ClientID:       entry.ClientID,
			SessionID:      entry.SessionID,
			Operation:      entry.Operation,
			Resource:       entry.Resource,
			Status:         entry.Status,
			ErrorMessage:   entry.ErrorMessage,
			ResponseTimeMs: entry.ResponseTimeMs,
			Metadata:       entry.Metadata,
		})
	}
	return ListAuditEntriesResponse{Data: data}
}

// ListAuditEntriesResponse represents a list of audit entries.
type ListAuditEntriesResponse struct {
	Data []AuditEntryResponse `json:"data"`
}

// InvokeResponse is returned when the pipeline admits a call.
type InvokeResponse struct {
	ClientID  string    `json:"client_id"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Result    any       `json:"result,omitempty"`
}
