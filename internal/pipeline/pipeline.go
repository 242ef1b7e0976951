// Package pipeline orchestrates one matching run: compare, rank, decide,
// resolve attachments, notify, persist. The flow is a fixed linear sequence;
// each invocation operates only on its own values and shares nothing mutable
// with concurrent runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arnavj/consultmatch/internal/ai"
	"github.com/arnavj/consultmatch/internal/mail"
	"github.com/arnavj/consultmatch/internal/matching"
	"github.com/arnavj/consultmatch/internal/store"
)

var (
	// ErrEmptyInput means the run had nothing to compare: empty JD text or
	// zero profiles. Distinct from a normal NO_MATCH outcome.
	ErrEmptyInput = errors.New("empty pipeline input")

	// ErrMissingRecipient means a stakeholder address is not configured.
	// Notifications are never silently rerouted to another stakeholder.
	ErrMissingRecipient = errors.New("missing recipient address")
)

// Status summarizes the user-visible outcome of a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// Request is one unit of work: a JD matched against a set of profiles.
type Request struct {
	JobID            string
	JDTitle          string
	JDContent        string
	Profiles         []ai.Profile
	ARRequestorEmail string
	RecruiterEmail   string
	CreatedBy        string
}

// Delivery reports the outcome of one email send.
type Delivery struct {
	Recipient matching.Recipient `json:"recipient"`
	Address   string             `json:"address"`
	Sent      bool               `json:"sent"`
	Error     string             `json:"error,omitempty"`
}

// Result is returned to the caller for every run that got past validation.
type Result struct {
	Status     Status                 `json:"status"`
	Route      matching.Route         `json:"route"`
	TopMatches []matching.RankedEntry `json:"top_matches"`
	Deliveries []Delivery             `json:"deliveries"`
	Warnings   []string               `json:"warnings,omitempty"`
	SessionID  string                 `json:"session_id,omitempty"`
}

// Mailer sends a single message. Implemented by mail.Sender.
type Mailer interface {
	Send(ctx context.Context, message mail.Message) error
}

// SessionStore persists the audit trail of a run. Implemented by store.Store.
type SessionStore interface {
	SaveSession(ctx context.Context, session *store.Session) (string, error)
}

type Pipeline struct {
	comparator ai.Comparator
	ranker     *matching.Ranker
	policy     *matching.Policy
	resolver   *matching.Resolver
	mailer     Mailer
	sessions   SessionStore
	logger     *zap.Logger
}

func New(comparator ai.Comparator, ranker *matching.Ranker, policy *matching.Policy, resolver *matching.Resolver, mailer Mailer, sessions SessionStore, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		comparator: comparator,
		ranker:     ranker,
		policy:     policy,
		resolver:   resolver,
		mailer:     mailer,
		sessions:   sessions,
		logger:     logger,
	}
}

// Run executes the full matching flow for one JD. Notification is attempted
// before persistence so a storage outage can never block the human-facing
// side effect; the safer partial-failure state is "notified but not
// recorded".
func (p *Pipeline) Run(ctx context.Context, req *Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	log := p.logger.With(zap.String("run_id", uuid.NewString()), zap.String("job_id", req.JobID))

	log.Info("starting comparison",
		zap.String("jd_title", req.JDTitle),
		zap.Int("profiles", len(req.Profiles)),
	)

	records, err := p.comparator.Compare(ctx, req.JDContent, req.Profiles)
	if err != nil {
		return nil, fmt.Errorf("compare documents: %w", err)
	}

	ranked := p.ranker.Rank(records)
	log.Info("ranking completed",
		zap.Int("records", len(records)),
		zap.Int("ranked", len(ranked)),
	)

	decision := p.policy.Decide(ranked, req.JDTitle)
	log.Info("notification decision",
		zap.String("route", string(decision.Route)),
		zap.Int("top_matches", len(decision.TopMatches)),
	)

	result := &Result{
		Status:     StatusSuccess,
		Route:      decision.Route,
		TopMatches: decision.TopMatches,
	}

	var attachments []matching.Attachment
	if decision.Route == matching.RouteMatchFound {
		var skips []matching.Skip
		attachments, skips = p.resolver.Resolve(ctx, decision.Attachable)
		for _, skip := range skips {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("resume attachment skipped for %q: %s", skip.ProfileName, skip.Reason))
		}
	}

	// Mail and persistence must complete even if the caller goes away
	// mid-run; a cancelled HTTP request must not half-apply side effects.
	sideEffectCtx := context.WithoutCancel(ctx)

	p.notify(sideEffectCtx, log, req, decision, attachments, result)

	sessionID, err := p.persist(sideEffectCtx, req, ranked)
	if err != nil {
		result.Status = StatusError
		return result, fmt.Errorf("persist comparison session: %w", err)
	}
	result.SessionID = sessionID

	return result, nil
}

func validate(req *Request) error {
	if req == nil || strings.TrimSpace(req.JDContent) == "" {
		return fmt.Errorf("%w: job description content is empty", ErrEmptyInput)
	}
	if len(req.Profiles) == 0 {
		return fmt.Errorf("%w: no profiles to compare", ErrEmptyInput)
	}
	if strings.TrimSpace(req.RecruiterEmail) == "" {
		return fmt.Errorf("%w: recruiter email is not configured", ErrMissingRecipient)
	}
	if strings.TrimSpace(req.ARRequestorEmail) == "" {
		return fmt.Errorf("%w: ar requestor email is not configured", ErrMissingRecipient)
	}
	return nil
}

// notify sends one email per recipient in the decision. A failed send is
// recorded and does not prevent the remaining sends.
func (p *Pipeline) notify(ctx context.Context, log *zap.Logger, req *Request, decision *matching.Decision, attachments []matching.Attachment, result *Result) {
	addresses := map[matching.Recipient]string{
		matching.RecipientARRequestor: req.ARRequestorEmail,
		matching.RecipientRecruiter:   req.RecruiterEmail,
	}

	// Stable send order: the AR requestor gets the detailed mail first.
	for _, recipient := range []matching.Recipient{matching.RecipientARRequestor, matching.RecipientRecruiter} {
		message, ok := decision.Messages[recipient]
		if !ok {
			continue
		}

		outgoing := mail.Message{
			To:      addresses[recipient],
			Subject: message.Subject,
			Body:    message.Body,
		}
		// Only the AR requestor receives resume attachments.
		if recipient == matching.RecipientARRequestor {
			outgoing.Attachments = attachments
		}

		delivery := Delivery{Recipient: recipient, Address: outgoing.To, Sent: true}
		if err := p.mailer.Send(ctx, outgoing); err != nil {
			delivery.Sent = false
			delivery.Error = err.Error()
			result.Status = StatusPartial
			log.Warn("email delivery failed",
				zap.String("recipient", string(recipient)),
				zap.String("address", outgoing.To),
				zap.Error(err),
			)
		}
		result.Deliveries = append(result.Deliveries, delivery)
	}
}

func (p *Pipeline) persist(ctx context.Context, req *Request, ranked []matching.RankedEntry) (string, error) {
	session := &store.Session{
		JobID:     req.JobID,
		CreatedBy: req.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}

	for _, entry := range ranked {
		session.Results = append(session.Results, store.ProfileScore{
			ProfileID:       profileRef(entry),
			SimilarityScore: entry.SimilarityScore,
		})
	}

	topK := p.policy.TopK
	if topK > len(ranked) {
		topK = len(ranked)
	}
	for _, entry := range ranked[:topK] {
		session.TopProfiles = append(session.TopProfiles, store.ProfileScore{
			ProfileID:       profileRef(entry),
			SimilarityScore: entry.SimilarityScore,
		})
	}

	return p.sessions.SaveSession(ctx, session)
}

// profileRef prefers the stable id; folder-based runs only have names.
func profileRef(entry matching.RankedEntry) string {
	if entry.ProfileID != "" {
		return entry.ProfileID
	}
	return entry.ProfileName
}
