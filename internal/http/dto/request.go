// Package dto provides data transfer objects for HTTP request and response
// handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/gatekeeper/internal/validation"
)

// CreateClientRequest contains the parameters for registering a client.
type CreateClientRequest struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Validate checks if the create client request is valid.
func (r *CreateClientRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ID,
			validation.Required,
			customValidation.Identifier,
		),
		validation.Field(&r.Description,
			validation.Length(0, 255),
		),
	)
}

// UpdateClientRequest contains the parameters for updating a client.
type UpdateClientRequest struct {
	Description string `json:"description"`
	Status      string `json:"status"`
}

// Validate checks if the update client request is valid.
func (r *UpdateClientRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Description,
			validation.Length(0, 255),
		),
		validation.Field(&r.Status,
			validation.Required,
			validation.In("active", "disabled"),
		),
	)
}

// UpsertRuleRequest contains the parameters for adding or replacing an access
// rule.
type UpsertRuleRequest struct {
	ClientID        string         `json:"client_id"`
	ResourcePattern string         `json:"resource_pattern"`
	Actions         []string       `json:"actions"`
	Conditions      map[string]any `json:"conditions,omitempty"`
}

// Validate checks if the upsert rule request is valid.
func (r *UpsertRuleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID,
			validation.Required,
			customValidation.Identifier,
		),
		validation.Field(&r.ResourcePattern,
			validation.Required,
			customValidation.ResourcePattern,
		),
		validation.Field(&r.Actions,
			validation.Required,
			validation.Each(customValidation.NotBlank, customValidation.NoWhitespace),
		),
	)
}

// UpsertLimitRequest contains the parameters for adding or replacing a
// rate-limit config.
type UpsertLimitRequest struct {
	ClientID          string `json:"client_id"`
	Operation         string `json:"operation"`
	RequestsPerMinute int    `json:"requests_per_minute"`
	Burst             int    `json:"burst"`
}

// Validate checks if the upsert limit request is valid.
func (r *UpsertLimitRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID,
			validation.Required,
			customValidation.Identifier,
		),
		validation.Field(&r.Operation,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
		),
		validation.Field(&r.RequestsPerMinute,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&r.Burst,
			validation.Required,
			validation.Min(1),
		),
	)
}

// InvokeRequest describes one call submitted to the security pipeline.
type InvokeRequest struct {
	Operation string         `json:"operation"`
	Resource  string         `json:"resource"`
	Action    string         `json:"action"`
	Context   map[string]any `json:"context,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Validate checks if the invoke request is valid.
func (r *InvokeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Operation,
			validation.Required,
			customValidation.Identifier,
		),
		validation.Field(&r.Resource,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 512),
		),
		validation.Field(&r.Action,
			validation.Required,
			customValidation.Identifier,
		),
	)
}
