package app

import (
	"fmt"
	"path/filepath"
	"sync"

	accessDomain "github.com/allisson/gatekeeper/internal/access/domain"
	accessRepository "github.com/allisson/gatekeeper/internal/access/repository"
	accessUseCase "github.com/allisson/gatekeeper/internal/access/usecase"
	auditUseCase "github.com/allisson/gatekeeper/internal/audit/usecase"
	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authRepository "github.com/allisson/gatekeeper/internal/auth/repository"
	authService "github.com/allisson/gatekeeper/internal/auth/service"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
	"github.com/allisson/gatekeeper/internal/pipeline"
	ratelimitDomain "github.com/allisson/gatekeeper/internal/ratelimit/domain"
	ratelimitRepository "github.com/allisson/gatekeeper/internal/ratelimit/repository"
	ratelimitUseCase "github.com/allisson/gatekeeper/internal/ratelimit/usecase"
	"github.com/allisson/gatekeeper/internal/storage"
)

// securityComponents groups the security-layer dependencies inside the
// container.
type securityComponents struct {
	credentialService authService.CredentialService
	tokenSigner       authService.TokenSigner

	clientRepo authUseCase.ClientRepository
	ruleRepo   accessUseCase.RuleRepository
	limitRepo  ratelimitUseCase.LimitRepository

	clientUseCase authUseCase.ClientUseCase
	authenticator authUseCase.Authenticator
	ruleEngine    accessUseCase.RuleEngine
	rateLimiter   ratelimitUseCase.RateLimiter
	auditLogger   auditUseCase.AuditLogger
	pipeline      *pipeline.SecurityPipeline

	credentialServiceInit sync.Once
	tokenSignerInit       sync.Once
	clientRepoInit        sync.Once
	ruleRepoInit          sync.Once
	limitRepoInit         sync.Once
	clientUseCaseInit     sync.Once
	authenticatorInit     sync.Once
	ruleEngineInit        sync.Once
	rateLimiterInit       sync.Once
	auditLoggerInit       sync.Once
	pipelineInit          sync.Once
}

// CredentialService returns the secret generation and hashing service.
func (c *Container) CredentialService() authService.CredentialService {
	c.security.credentialServiceInit.Do(func() {
		c.security.credentialService = authService.NewCredentialService()
	})
	return c.security.credentialService
}

// TokenSigner returns the bearer token signer.
func (c *Container) TokenSigner() (authService.TokenSigner, error) {
	c.security.tokenSignerInit.Do(func() {
		signer, err := authService.NewTokenSigner(c.config.TokenSigningSecret)
		if err != nil {
			c.initErrors["tokenSigner"] = fmt.Errorf("failed to create token signer: %w", err)
			return
		}
		c.security.tokenSigner = signer
	})
	if err, exists := c.initErrors["tokenSigner"]; exists {
		return nil, err
	}
	return c.security.tokenSigner, nil
}

// ClientRepository returns the client directory repository for the configured
// store backend.
func (c *Container) ClientRepository() (authUseCase.ClientRepository, error) {
	c.security.clientRepoInit.Do(func() {
		repo, err := c.initClientRepository()
		if err != nil {
			c.initErrors["clientRepo"] = err
			return
		}
		c.security.clientRepo = repo
	})
	if err, exists := c.initErrors["clientRepo"]; exists {
		return nil, err
	}
	return c.security.clientRepo, nil
}

// RuleRepository returns the access-rule repository for the configured store
// backend.
func (c *Container) RuleRepository() (accessUseCase.RuleRepository, error) {
	c.security.ruleRepoInit.Do(func() {
		repo, err := c.initRuleRepository()
		if err != nil {
			c.initErrors["ruleRepo"] = err
			return
		}
		c.security.ruleRepo = repo
	})
	if err, exists := c.initErrors["ruleRepo"]; exists {
		return nil, err
	}
	return c.security.ruleRepo, nil
}

// LimitRepository returns the rate-limit config repository for the configured
// store backend.
func (c *Container) LimitRepository() (ratelimitUseCase.LimitRepository, error) {
	c.security.limitRepoInit.Do(func() {
		repo, err := c.initLimitRepository()
		if err != nil {
			c.initErrors["limitRepo"] = err
			return
		}
		c.security.limitRepo = repo
	})
	if err, exists := c.initErrors["limitRepo"]; exists {
		return nil, err
	}
	return c.security.limitRepo, nil
}

// ClientUseCase returns the client directory use case.
func (c *Container) ClientUseCase() (authUseCase.ClientUseCase, error) {
	c.security.clientUseCaseInit.Do(func() {
		clientRepo, err := c.ClientRepository()
		if err != nil {
			c.initErrors["clientUseCase"] = err
			return
		}
		c.security.clientUseCase = authUseCase.NewClientUseCase(
			clientRepo,
			c.CredentialService(),
			c.Clock(),
		)
	})
	if err, exists := c.initErrors["clientUseCase"]; exists {
		return nil, err
	}
	return c.security.clientUseCase, nil
}

// Authenticator returns the session authenticator.
func (c *Container) Authenticator() (authUseCase.Authenticator, error) {
	c.security.authenticatorInit.Do(func() {
		clientRepo, err := c.ClientRepository()
		if err != nil {
			c.initErrors["authenticator"] = err
			return
		}
		tokenSigner, err := c.TokenSigner()
		if err != nil {
			c.initErrors["authenticator"] = err
			return
		}
		c.security.authenticator = authUseCase.NewAuthenticator(
			authUseCase.AuthenticatorConfig{
				SessionExpiration:  c.config.SessionExpiration,
				LockoutMaxAttempts: c.config.LockoutMaxAttempts,
				LockoutWindow:      c.config.LockoutWindow,
			},
			clientRepo,
			c.CredentialService(),
			tokenSigner,
			c.Clock(),
			c.Logger(),
		)
	})
	if err, exists := c.initErrors["authenticator"]; exists {
		return nil, err
	}
	return c.security.authenticator, nil
}

// RuleEngine returns the access-rule engine.
func (c *Container) RuleEngine() (accessUseCase.RuleEngine, error) {
	c.security.ruleEngineInit.Do(func() {
		ruleRepo, err := c.RuleRepository()
		if err != nil {
			c.initErrors["ruleEngine"] = err
			return
		}
		c.security.ruleEngine = accessUseCase.NewRuleEngine(ruleRepo, c.Logger())
	})
	if err, exists := c.initErrors["ruleEngine"]; exists {
		return nil, err
	}
	return c.security.ruleEngine, nil
}

// RateLimiter returns the token-bucket rate limiter.
func (c *Container) RateLimiter() (ratelimitUseCase.RateLimiter, error) {
	c.security.rateLimiterInit.Do(func() {
		limitRepo, err := c.LimitRepository()
		if err != nil {
			c.initErrors["rateLimiter"] = err
			return
		}
		c.security.rateLimiter = ratelimitUseCase.NewRateLimiter(
			ratelimitUseCase.RateLimiterConfig{
				DefaultRequestsPerMinute: c.config.RateLimitDefaultPerMinute,
				DefaultBurst:             c.config.RateLimitDefaultBurst,
				IdleTimeout:              c.config.RateLimitIdleTimeout,
			},
			limitRepo,
			c.Clock(),
			c.Logger(),
		)
	})
	if err, exists := c.initErrors["rateLimiter"]; exists {
		return nil, err
	}
	return c.security.rateLimiter, nil
}

// AuditLogger returns the asynchronous audit logger.
func (c *Container) AuditLogger() (auditUseCase.AuditLogger, error) {
	c.security.auditLoggerInit.Do(func() {
		archive, err := c.ArchiveBucket()
		if err != nil {
			c.initErrors["auditLogger"] = err
			return
		}
		cadence := auditUseCase.CadenceDaily
		if c.config.AuditRotationCadence == string(auditUseCase.CadenceHourly) {
			cadence = auditUseCase.CadenceHourly
		}
		c.security.auditLogger = auditUseCase.NewAuditLogger(
			auditUseCase.AuditLoggerConfig{
				Dir:              c.config.AuditLogDir,
				Cadence:          cadence,
				MaxFileSizeBytes: c.config.AuditMaxFileSize,
				CompressRotated:  c.config.AuditCompressRotated,
				RetentionDays:    c.config.AuditRetentionDays,
				QueueSize:        c.config.AuditQueueSize,
				RedactedFields:   c.config.AuditRedactedFields,
			},
			archive,
			c.Clock(),
			c.Logger(),
		)
	})
	if err, exists := c.initErrors["auditLogger"]; exists {
		return nil, err
	}
	return c.security.auditLogger, nil
}

// Pipeline returns the security pipeline composing authentication,
// authorization, rate limiting, and auditing.
func (c *Container) Pipeline() (*pipeline.SecurityPipeline, error) {
	c.security.pipelineInit.Do(func() {
		authenticator, err := c.Authenticator()
		if err != nil {
			c.initErrors["pipeline"] = err
			return
		}
		ruleEngine, err := c.RuleEngine()
		if err != nil {
			c.initErrors["pipeline"] = err
			return
		}
		rateLimiter, err := c.RateLimiter()
		if err != nil {
			c.initErrors["pipeline"] = err
			return
		}
		auditLogger, err := c.AuditLogger()
		if err != nil {
			c.initErrors["pipeline"] = err
			return
		}
		c.security.pipeline = pipeline.New(authenticator, ruleEngine, rateLimiter, auditLogger, c.Clock())
	})
	if err, exists := c.initErrors["pipeline"]; exists {
		return nil, err
	}
	return c.security.pipeline, nil
}

// initClientRepository selects the client repository implementation based on
// the configured store driver.
func (c *Container) initClientRepository() (authUseCase.ClientRepository, error) {
	switch c.config.StoreDriver {
	case "file":
		store := storage.NewFileStore[authDomain.Client](filepath.Join(c.config.DataDir, "clients.json"))
		return authRepository.NewFileClientRepository(store)
	case "postgres":
		db, err := c.DB()
		if err != nil {
			return nil, err
		}
		return authRepository.NewPostgreSQLClientRepository(db), nil
	case "mysql":
		db, err := c.DB()
		if err != nil {
			return nil, err
		}
		return authRepository.NewMySQLClientRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", c.config.StoreDriver)
	}
}

// initRuleRepository selects the rule repository implementation based on the
// configured store driver.
func (c *Container) initRuleRepository() (accessUseCase.RuleRepository, error) {
	switch c.config.StoreDriver {
	case "file":
		store := storage.NewFileStore[accessDomain.Rule](filepath.Join(c.config.DataDir, "access_rules.json"))
		return accessRepository.NewFileRuleRepository(store)
	case "postgres":
		db, err := c.DB()
		if err != nil {
			return nil, err
		}
		return accessRepository.NewPostgreSQLRuleRepository(db), nil
	case "mysql":
		db, err := c.DB()
		if err != nil {
			return nil, err
		}
		return accessRepository.NewMySQLRuleRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", c.config.StoreDriver)
	}
}

// initLimitRepository selects the limit repository implementation based on the
// configured store driver.
func (c *Container) initLimitRepository() (ratelimitUseCase.LimitRepository, error) {
	switch c.config.StoreDriver {
	case "file":
		store := storage.NewFileStore[ratelimitDomain.LimitConfig](filepath.Join(c.config.DataDir, "rate_limits.json"))
		return ratelimitRepository.NewFileLimitRepository(store)
	case "postgres":
		db, err := c.DB()
		if err != nil {
			return nil, err
		}
		return ratelimitRepository.NewPostgreSQLLimitRepository(db), nil
	case "mysql":
		db, err := c.DB()
		if err != nil {
			return nil, err
		}
		return ratelimitRepository.NewMySQLLimitRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", c.config.StoreDriver)
	}
}
