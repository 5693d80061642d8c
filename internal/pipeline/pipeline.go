// Package pipeline composes authentication, authorization, rate limiting, and
// the protected operation into one ordered chain, auditing every outcome.
//
// Stages form an explicit list. Each stage receives a Frame value and returns
// an updated copy plus an error; an error stops the chain and the partial
// frame still feeds the audit entry. No stage mutates shared request state.
package pipeline

import (
	"context"
	"errors"
	"time"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
	accessUseCase "github.com/allisson/gatekeeper/internal/access/usecase"
	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
	auditUseCase "github.com/allisson/gatekeeper/internal/audit/usecase"
	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
	"github.com/allisson/gatekeeper/internal/clock"
	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
	ratelimitUseCase "github.com/allisson/gatekeeper/internal/ratelimit/usecase"
)

// Invoker is the protected operation wrapped by the pipeline.
type Invoker func(ctx context.Context, auth *authDomain.AuthContext) (any, error)

// Request describes one inbound call. The pipeline never modifies it.
type Request struct {
	Credentials authDomain.Credentials
	Operation   string
	Resource    string
	Action      string

	// Context carries the request fields checked against rule conditions.
	Context map[string]any

	// Metadata is attached to the audit entry.
	Metadata map[string]any

	// Invoke runs the protected operation once the security stages pass. May
	// be nil when only the security decision is wanted.
	Invoke Invoker
}

// Frame is the state threaded through the stages.
type Frame struct {
	Request    Request
	Auth       *authDomain.AuthContext
	Response   any
	RetryAfter time.Duration
}

// Result is the outcome of a pipeline run.
type Result struct {
	Auth       *authDomain.AuthContext
	Response   any
	RetryAfter time.Duration
	Err        error
}

// Stage is one named step of the chain.
type Stage struct {
	Name string
	Run  func(ctx context.Context, frame Frame) (Frame, error)
}

// SecurityPipeline runs the fixed chain authenticate, authorize, rate limit,
// invoke, and records one audit entry per run including rejections.
type SecurityPipeline struct {
	authenticator authUseCase.Authenticator
	ruleEngine    accessUseCase.RuleEngine
	rateLimiter   ratelimitUseCase.RateLimiter
	auditLogger   auditUseCase.AuditLogger
	clock         clock.Clock
	stages        []Stage
}

// New wires the four components into a pipeline.
func New(
	authenticator authUseCase.Authenticator,
	ruleEngine accessUseCase.RuleEngine,
	rateLimiter ratelimitUseCase.RateLimiter,
	auditLogger auditUseCase.AuditLogger,
	clk clock.Clock,
) *SecurityPipeline {
	p := &SecurityPipeline{
		authenticator: authenticator,
		ruleEngine:    ruleEngine,
		rateLimiter:   rateLimiter,
		auditLogger:   auditLogger,
		clock:         clk,
	}
	p.stages = []Stage{
		{Name: "authenticate", Run: p.authenticate},
		{Name: "authorize", Run: p.authorize},
		{Name: "rate-limit", Run: p.rateLimit},
		{Name: "invoke", Run: p.invoke},
	}
	return p
}

// Execute runs the chain for one request. A failing stage short-circuits the
// remaining stages; the outcome, granted or rejected, is audited either way.
func (p *SecurityPipeline) Execute(ctx context.Context, req Request) Result {
	started := p.clock.Now()
	frame := Frame{Request: req}

	var stageErr error
	for _, stage := range p.stages {
		frame, stageErr = stage.Run(ctx, frame)
		if stageErr != nil {
			break
		}
	}

	p.audit(frame, stageErr, started)

	return Result{
		Auth:       frame.Auth,
		Response:   frame.Response,
		RetryAfter: frame.RetryAfter,
		Err:        stageErr,
	}
}

func (p *SecurityPipeline) authenticate(ctx context.Context, frame Frame) (Frame, error) {
	auth, err := p.authenticator.Authenticate(ctx, frame.Request.Credentials)
	if err != nil {
		return frame, err
	}
	frame.Auth = auth
	return frame, nil
}

func (p *SecurityPipeline) authorize(ctx context.Context, frame Frame) (Frame, error) {
	req := frame.Request
	if !p.ruleEngine.CheckAccess(ctx, frame.Auth.ClientID, req.Resource, req.Action, req.Context) {
		return frame, accessDomain.ErrAccessDenied
	}
	return frame, nil
}

func (p *SecurityPipeline) rateLimit(ctx context.Context, frame Frame) (Frame, error) {
	err := p.rateLimiter.TryAcquire(ctx, frame.Auth.ClientID, frame.Request.Operation)
	if err != nil {
		var exceeded *ratelimitDomain.LimitExceededError
		if errors.As(err, &exceeded) {
			frame.RetryAfter = exceeded.RetryAfter
		}
		return frame, err
	}
	return frame, nil
}

func (p *SecurityPipeline) invoke(ctx context.Context, frame Frame) (Frame, error) {
	if frame.Request.Invoke == nil {
		return frame, nil
	}
	response, err := frame.Request.Invoke(ctx, frame.Auth)
	if err != nil {
		return frame, err
	}
	frame.Response = response
	return frame, nil
}

func (p *SecurityPipeline) audit(frame Frame, stageErr error, started time.Time) {
	req := frame.Request

	entry := &auditDomain.Entry{
		Timestamp:      started,
		ClientID:       req.Credentials.CounterClientID(),
		Operation:      req.Operation,
		Resource:       req.Resource,
		Status:         auditDomain.StatusSuccess,
		ResponseTimeMs: p.clock.Now().Sub(started).Milliseconds(),
		Metadata:       req.Metadata,
	}
	if frame.Auth != nil {
		entry.ClientID = frame.Auth.ClientID
		entry.SessionID = frame.Auth.SessionID
	}
	if stageErr != nil {
		entry.Status = auditDomain.StatusError
		entry.ErrorMessage = stageErr.Error()
	}

	p.auditLogger.Record(entry)
}
