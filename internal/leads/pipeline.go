package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/draintech/lead-intake/internal/botdefense"
	"github.com/draintech/lead-intake/internal/observability/metrics"
	"github.com/draintech/lead-intake/internal/ratelimit"
	"github.com/draintech/lead-intake/pkg/logging"
)

// RequestMeta carries the network context of a submission.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Pipeline orchestrates a single lead submission: honeypot check, rate
// limiting, challenge verification, field validation, persistence. The
// stage order is fixed: the honeypot check runs before anything else so
// bot traffic never increments a rate counter, and rate limiting runs
// before challenge verification so capped identities spend no verification
// calls.
type Pipeline struct {
	limiter  ratelimit.Limiter
	verifier botdefense.Verifier
	store    Repository
	metrics  *metrics.IntakeMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewPipeline wires the intake collaborators.
func NewPipeline(limiter ratelimit.Limiter, verifier botdefense.Verifier, store Repository, m *metrics.IntakeMetrics, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Default()
	}
	return &Pipeline{
		limiter:  limiter,
		verifier: verifier,
		store:    store,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Process runs one submission through the pipeline. On success the
// returned Lead carries its assigned id and timestamp and has been written
// through the store. There is no rollback: a failed write after all checks
// loses the submission and the client must retry.
func (p *Pipeline) Process(ctx context.Context, sub *LeadSubmission, meta RequestMeta) (*Lead, error) {
	start := p.now()

	if err := botdefense.CheckHoneypot(sub.Honeypot); err != nil {
		p.metrics.ObserveSubmission("honeypot")
		p.logger.Info("submission rejected by honeypot", "source_path", sub.SourcePath)
		return nil, err
	}

	identity := ratelimit.HashIdentity(meta.IP)
	allowed, err := p.limiter.Allow(ctx, identity)
	if err != nil {
		// Limiters fail open; an error here still must not block intake.
		p.logger.Error("rate limit check failed", "error", err)
		allowed = true
	}
	if !allowed {
		p.metrics.ObserveSubmission("rate_limited")
		return nil, ErrRateLimited
	}

	result, err := p.verifier.Verify(ctx, sub.ChallengeToken, meta.IP)
	if err != nil {
		p.metrics.ObserveSubmission("challenge_failed")
		return nil, ErrChallengeFailed
	}
	if !result.Skipped && !result.Verified {
		p.metrics.ObserveSubmission("challenge_failed")
		p.logger.Info("submission rejected by challenge verification", "source_path", sub.SourcePath)
		return nil, ErrChallengeFailed
	}

	if err := sub.Validate(); err != nil {
		p.metrics.ObserveSubmission("invalid")
		return nil, err
	}

	addressID, _ := sub.Address.AddressID()
	lead := &Lead{
		ID:                uuid.New().String(),
		CreatedAt:         p.now().UTC(),
		Name:              sub.Name,
		Phone:             sub.Phone,
		Email:             sub.Email,
		Postcode:          sub.Postcode,
		AddressLabel:      sub.Address.Label(),
		AddressID:         addressID,
		AddressRaw:        sub.Address.Raw(),
		Service:           sub.Service,
		OtherService:      sub.OtherService,
		Notes:             sub.Notes,
		SourcePath:        sub.SourcePath,
		Referrer:          sub.Referrer,
		IdentityHash:      identity,
		UserAgent:         meta.UserAgent,
		ChallengeVerified: result.Verified,
	}

	if err := p.store.Insert(ctx, lead); err != nil {
		p.metrics.ObserveSubmission("storage_error")
		p.logger.Error("failed to persist lead", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	p.metrics.ObserveSubmission("accepted")
	p.metrics.ObserveLatency(p.now().Sub(start).Seconds())
	p.logger.Info("lead created",
		"id", lead.ID,
		"service", lead.Service,
		"source_path", lead.SourcePath,
		"challenge_verified", lead.ChallengeVerified,
	)
	return lead, nil
}
