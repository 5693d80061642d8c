package commands

import (
	"context"
	"log/slog"
	"testing"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	auditUseCase "github.com/allisson/gatekeeper/internal/audit/usecase"
	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.DiscardHandler)
}

type fakeClientUseCase struct {
	createFn func(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error)
	updateFn func(ctx context.Context, clientID string, input *authDomain.UpdateClientInput) error
	rotateFn func(ctx context.Context, clientID string) (*authDomain.CreateClientOutput, error)
	listFn   func(ctx context.Context, offset, limit int) ([]*authDomain.Client, error)
}

func (f *fakeClientUseCase) Create(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error) {
	return f.createFn(ctx, input)
}

func (f *fakeClientUseCase) Update(ctx context.Context, clientID string, input *authDomain.UpdateClientInput) error {
	return f.updateFn(ctx, clientID, input)
}

func (f *fakeClientUseCase) Disable(ctx context.Context, clientID string) error {
	return nil
}

func (f *fakeClientUseCase) RotateSecret(ctx context.Context, clientID string) (*authDomain.CreateClientOutput, error) {
	return f.rotateFn(ctx, clientID)
}

func (f *fakeClientUseCase) Get(ctx context.Context, clientID string) (*authDomain.Client, error) {
	return nil, nil
}

func (f *fakeClientUseCase) List(ctx context.Context, offset, limit int) ([]*authDomain.Client, error) {
	return f.listFn(ctx, offset, limit)
}

type fakeRuleEngine struct {
	upsertFn       func(ctx context.Context, rule *accessDomain.Rule) error
	listByClientFn func(ctx context.Context, clientID string) ([]*accessDomain.Rule, error)
	listFn         func(ctx context.Context, offset, limit int) ([]*accessDomain.Rule, error)
}

func (f *fakeRuleEngine) CheckAccess(ctx context.Context, clientID, resource, action string, reqCtx map[string]any) bool {
	return false
}

func (f *fakeRuleEngine) Upsert(ctx context.Context, rule *accessDomain.Rule) error {
	return f.upsertFn(ctx, rule)
}

func (f *fakeRuleEngine) Delete(ctx context.Context, clientID, resourcePattern string) error {
	return nil
}

func (f *fakeRuleEngine) ListByClient(ctx context.Context, clientID string) ([]*accessDomain.Rule, error) {
	return f.listByClientFn(ctx, clientID)
}

func (f *fakeRuleEngine) List(ctx context.Context, offset, limit int) ([]*accessDomain.Rule, error) {
	return f.listFn(ctx, offset, limit)
}

type fakeRateLimiter struct {
	setLimitFn   func(ctx context.Context, config *ratelimitDomain.LimitConfig) error
	listLimitsFn func(ctx context.Context, offset, limit int) ([]*ratelimitDomain.LimitConfig, error)
}

func (f *fakeRateLimiter) TryAcquire(ctx context.Context, clientID, operation string) error {
	return nil
}

func (f *fakeRateLimiter) SetLimit(ctx context.Context, config *ratelimitDomain.LimitConfig) error {
	return f.setLimitFn(ctx, config)
}

func (f *fakeRateLimiter) DeleteLimit(ctx context.Context, clientID, operation string) error {
	return nil
}

func (f *fakeRateLimiter) ListLimits(ctx context.Context, offset, limit int) ([]*ratelimitDomain.LimitConfig, error) {
	return f.listLimitsFn(ctx, offset, limit)
}

func (f *fakeRateLimiter) SweepIdleBuckets(ctx context.Context) {}

type fakeAuditLogger struct {
	lastFilter auditUseCase.QueryFilter
	entries    []*auditDomain.Entry
	queryErr   error
}

func (f *fakeAuditLogger) Record(entry *auditDomain.Entry) {}

func (f *fakeAuditLogger) Query(ctx context.Context, filter auditUseCase.QueryFilter) ([]*auditDomain.Entry, error) {
	f.lastFilter = filter
	return f.entries, f.queryErr
}

func (f *fakeAuditLogger) RotateIfDue(ctx context.Context) {}

func (f *fakeAuditLogger) SweepRetention(ctx context.Context) {}

func (f *fakeAuditLogger) Close(ctx context.Context) error {
	return nil
}
