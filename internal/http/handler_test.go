package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	auditUseCase "github.com/allisson/gatekeeper/internal/audit/usecase"
	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// createTestContext creates a gin test context with an optional JSON body.
func createTestContext(t *testing.T, method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

type fakeClientUseCase struct {
	createFn  func(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error)
	updateFn  func(ctx context.Context, clientID string, input *authDomain.UpdateClientInput) error
	disableFn func(ctx context.Context, clientID string) error
	rotateFn  func(ctx context.Context, clientID string) (*authDomain.CreateClientOutput, error)
	getFn     func(ctx context.Context, clientID string) (*authDomain.Client, error)
	listFn    func(ctx context.Context, offset, limit int) ([]*authDomain.Client, error)
}

func (f *fakeClientUseCase) Create(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error) {
	return f.createFn(ctx, input)
}

func (f *fakeClientUseCase) Update(ctx context.Context, clientID string, input *authDomain.UpdateClientInput) error {
	return f.updateFn(ctx, clientID, input)
}

func (f *fakeClientUseCase) Disable(ctx context.Context, clientID string) error {
	return f.disableFn(ctx, clientID)
}

func (f *fakeClientUseCase) RotateSecret(ctx context.Context, clientID string) (*authDomain.CreateClientOutput, error) {
	return f.rotateFn(ctx, clientID)
}

func (f *fakeClientUseCase) Get(ctx context.Context, clientID string) (*authDomain.Client, error) {
	return f.getFn(ctx, clientID)
}

func (f *fakeClientUseCase) List(ctx context.Context, offset, limit int) ([]*authDomain.Client, error) {
	return f.listFn(ctx, offset, limit)
}

type fakeRuleEngine struct {
	checkFn        func(ctx context.Context, clientID, resource, action string, reqCtx map[string]any) bool
	upsertFn       func(ctx context.Context, rule *accessDomain.Rule) error
	deleteFn       func(ctx context.Context, clientID, resourcePattern string) error
	listByClientFn func(ctx context.Context, clientID string) ([]*accessDomain.Rule, error)
	listFn         func(ctx context.Context, offset, limit int) ([]*accessDomain.Rule, error)
}

func (f *fakeRuleEngine) CheckAccess(ctx context.Context, clientID, resource, action string, reqCtx map[string]any) bool {
	return f.checkFn(ctx, clientID, resource, action, reqCtx)
}

func (f *fakeRuleEngine) Upsert(ctx context.Context, rule *accessDomain.Rule) error {
	return f.upsertFn(ctx, rule)
}

func (f *fakeRuleEngine) Delete(ctx context.Context, clientID, resourcePattern string) error {
	return f.deleteFn(ctx, clientID, resourcePattern)
}

func (f *fakeRuleEngine) ListByClient(ctx context.Context, clientID string) ([]*accessDomain.Rule, error) {
	return f.listByClientFn(ctx, clientID)
}

func (f *fakeRuleEngine) List(ctx context.Context, offset, limit int) ([]*accessDomain.Rule, error) {
	return f.listFn(ctx, offset, limit)
}

type fakeRateLimiter struct {
	tryAcquireFn  func(ctx context.Context, clientID, operation string) error
	setLimitFn    func(ctx context.Context, config *ratelimitDomain.LimitConfig) error
	deleteLimitFn func(ctx context.Context, clientID, operation string) error
	listLimitsFn  func(ctx context.Context, offset, limit int) ([]*ratelimitDomain.LimitConfig, error)
}

func (f *fakeRateLimiter) TryAcquire(ctx context.Context, clientID, operation string) error {
	return f.tryAcquireFn(ctx, clientID, operation)
}

func (f *fakeRateLimiter) SetLimit(ctx context.Context, config *ratelimitDomain.LimitConfig) error {
	return f.setLimitFn(ctx, config)
}

func (f *fakeRateLimiter) DeleteLimit(ctx context.Context, clientID, operation string) error {
	return f.deleteLimitFn(ctx, clientID, operation)
}

func (f *fakeRateLimiter) ListLimits(ctx context.Context, offset, limit int) ([]*ratelimitDomain.LimitConfig, error) {
	return f.listLimitsFn(ctx, offset, limit)
}

func (f *fakeRateLimiter) SweepIdleBuckets(ctx context.Context) {}

type fakeAuditLogger struct {
	recorded   []*auditDomain.Entry
	lastFilter auditUseCase.QueryFilter
	entries    []*auditDomain.Entry
	queryErr   error
}

func (f *fakeAuditLogger) Record(entry *auditDomain.Entry) {
	f.recorded = append(f.recorded, entry)
}

func (f *fakeAuditLogger) Query(ctx context.Context, filter auditUseCase.QueryFilter) ([]*auditDomain.Entry, error) {
	f.lastFilter = filter
	return f.entries, f.queryErr
}

func (f *fakeAuditLogger) RotateIfDue(ctx context.Context) {}

func (f *fakeAuditLogger) SweepRetention(ctx context.Context) {}

func (f *fakeAuditLogger) Close(ctx context.Context) error { return nil }

type fakeAuthenticator struct {
	authenticateFn func(ctx context.Context, creds authDomain.Credentials) (*authDomain.AuthContext, error)
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, creds authDomain.Credentials) (*authDomain.AuthContext, error) {
	return f.authenticateFn(ctx, creds)
}

func (f *fakeAuthenticator) Invalidate(sessionID string) {}

func (f *fakeAuthenticator) SweepExpiredSessions(ctx context.Context) {}

func (f *fakeAuthenticator) PruneFailureCounters(ctx context.Context) {}
