package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	auditUseCase "github.com/allisson/gatekeeper/internal/audit/usecase"
)

func TestQueryAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := testLogger(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("passes filter and prints entries", func(t *testing.T) {
		auditLogger := &fakeAuditLogger{
			entries: []*auditDomain.Entry{
				{
					Timestamp: now,
					ClientID:  "billing-service",
					Operation: "create-invoice",
					Resource:  "invoices/2025",
					Status:    "success",
				},
			},
		}

		filter := auditUseCase.QueryFilter{
			ClientID: "billing-service",
			Status:   "success",
			Offset:   2,
			Limit:    10,
		}

		var out bytes.Buffer
		err := queryAuditLogs(ctx, auditLogger, logger, filter, "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Equal(t, filter, auditLogger.lastFilter)
		require.Contains(t, out.String(), "create-invoice")
		require.Contains(t, out.String(), "2025-06-01T12:00:00Z")
	})

	t.Run("empty result", func(t *testing.T) {
		auditLogger := &fakeAuditLogger{}

		var out bytes.Buffer
		err := queryAuditLogs(ctx, auditLogger, logger, auditUseCase.QueryFilter{}, "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Contains(t, out.String(), "No audit entries found")
	})

	t.Run("query error", func(t *testing.T) {
		auditLogger := &fakeAuditLogger{queryErr: errors.New("boom")}

		err := queryAuditLogs(ctx, auditLogger, logger, auditUseCase.QueryFilter{}, "text", IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to query audit logs")
	})
}
