package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
	"github.com/allisson/gatekeeper/internal/http/dto"
)

func TestRuleHandler_UpsertHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		engine := &fakeRuleEngine{
			upsertFn: func(ctx context.Context, rule *accessDomain.Rule) error {
				assert.Equal(t, "billing-service", rule.ClientID)
				assert.Equal(t, "invoices/*", rule.ResourcePattern)
				assert.Equal(t, []string{"read", "write"}, rule.Actions)
				return nil
			},
		}
		handler := NewRuleHandler(engine, testLogger())

		c, w := createTestContext(t, http.MethodPut, "/admin/rules", dto.UpsertRuleRequest{
			ClientID:        "billing-service",
			ResourcePattern: "invoices/*",
			Actions:         []string{"read", "write"},
		})

		handler.UpsertHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.RuleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "invoices/*", response.ResourcePattern)
	})

	t.Run("Error_MissingActions", func(t *testing.T) {
		handler := NewRuleHandler(&fakeRuleEngine{}, testLogger())

		c, w := createTestContext(t, http.MethodPut, "/admin/rules", dto.UpsertRuleRequest{
			ClientID:        "billing-service",
			ResourcePattern: "invoices/*",
		})

		handler.UpsertHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_BlankAction", func(t *testing.T) {
		handler := NewRuleHandler(&fakeRuleEngine{}, testLogger())

		c, w := createTestContext(t, http.MethodPut, "/admin/rules", dto.UpsertRuleRequest{
			ClientID:        "billing-service",
			ResourcePattern: "invoices/*",
			Actions:         []string{"  "},
		})

		handler.UpsertHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestRuleHandler_DeleteHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		engine := &fakeRuleEngine{
			deleteFn: func(ctx context.Context, clientID, resourcePattern string) error {
				assert.Equal(t, "billing-service", clientID)
				assert.Equal(t, "invoices/*", resourcePattern)
				return nil
			},
		}
		handler := NewRuleHandler(engine, testLogger())

		c, w := createTestContext(t, http.MethodDelete,
			"/admin/rules?client_id=billing-service&resource_pattern=invoices%2F%2A", nil)

		handler.DeleteHandler(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Error_MissingQueryParams", func(t *testing.T) {
		handler := NewRuleHandler(&fakeRuleEngine{}, testLogger())

		c, w := createTestContext(t, http.MethodDelete, "/admin/rules?client_id=billing-service", nil)

		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		engine := &fakeRuleEngine{
			deleteFn: func(ctx context.Context, clientID, resourcePattern string) error {
				return accessDomain.ErrRuleNotFound
			},
		}
		handler := NewRuleHandler(engine, testLogger())

		c, w := createTestContext(t, http.MethodDelete,
			"/admin/rules?client_id=billing-service&resource_pattern=missing", nil)

		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRuleHandler_ListHandler(t *testing.T) {
	t.Run("Success_ByClient", func(t *testing.T) {
		engine := &fakeRuleEngine{
			listByClientFn: func(ctx context.Context, clientID string) ([]*accessDomain.Rule, error) {
				assert.Equal(t, "billing-service", clientID)
				return []*accessDomain.Rule{
					{ClientID: clientID, ResourcePattern: "invoices/*", Actions: []string{"read"}},
				}, nil
			},
		}
		handler := NewRuleHandler(engine, testLogger())

		c, w := createTestContext(t, http.MethodGet, "/admin/rules?client_id=billing-service", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListRulesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		assert.Equal(t, "invoices/*", response.Data[0].ResourcePattern)
	})

	t.Run("Success_Paginated", func(t *testing.T) {
		engine := &fakeRuleEngine{
			listFn: func(ctx context.Context, offset, limit int) ([]*accessDomain.Rule, error) {
				assert.Equal(t, 10, offset)
				assert.Equal(t, 20, limit)
				return []*accessDomain.Rule{}, nil
			},
		}
		handler := NewRuleHandler(engine, testLogger())

		c, w := createTestContext(t, http.MethodGet, "/admin/rules?offset=10&limit=20", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListRulesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Empty(t, response.Data)
	})
}
