// Package moderation holds the rank-gated approval workflow: the user
// lifecycle (pending -> active | banned) and the job-application
// lifecycle (pending -> approved | rejected). All transitions require a
// reviewer with administrative authority and happen exactly once.
package moderation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ratatoing/ratatoing-server/internal/domain/applications"
	"github.com/ratatoing/ratatoing-server/internal/domain/users"
	"github.com/ratatoing/ratatoing-server/internal/infra/metrics"
)

var (
	ErrUnauthorized = errors.New("moderation: reviewer lacks authority")
	ErrNotFound     = errors.New("moderation: target not found")
	ErrInvalidState = errors.New("moderation: target not pending")
	ErrConstraint   = errors.New("moderation: constraint violation")
)

// UserStore is the slice of the user repository the workflow needs.
// Approve and Ban are guarded single-shot transitions: on a non-pending
// target they fail with users.ErrNotPending, never silently succeed.
type UserStore interface {
	Approve(ctx context.Context, userID, reviewerID int64) (*users.User, error)
	Ban(ctx context.Context, userID, reviewerID int64) (*users.User, error)
	ListPending(ctx context.Context) ([]users.User, error)
	ListDecided(ctx context.Context, limit int) ([]users.User, error)
}

// ApplicationStore mirrors UserStore for job applications. Approve must
// atomically grant the requested job to the applicant.
type ApplicationStore interface {
	Approve(ctx context.Context, appID, reviewerID int64) (*applications.Application, error)
	Reject(ctx context.Context, appID, reviewerID int64) (*applications.Application, error)
	ListPending(ctx context.Context) ([]applications.Application, error)
	ListDecided(ctx context.Context, limit int) ([]applications.Application, error)
}

type Service struct {
	log   *slog.Logger
	users UserStore
	apps  ApplicationStore
}

func NewService(log *slog.Logger, users UserStore, apps ApplicationStore) *Service {
	return &Service{log: log, users: users, apps: apps}
}

// ApproveUser activates a pending signup. The reviewer is recorded as
// the approver; both checks fail the call rather than no-op.
func (s *Service) ApproveUser(ctx context.Context, reviewer *users.User, userID int64) (*users.User, error) {
	if !reviewer.Rank.CanAdministrate() {
		return nil, ErrUnauthorized
	}
	u, err := s.users.Approve(ctx, userID, reviewer.ID)
	if err != nil {
		return nil, translate(err)
	}
	s.log.Info("user approved", "user_id", u.ID, "reviewer_id", reviewer.ID)
	metrics.Decisions.WithLabelValues("user", "approved").Inc()
	return u, nil
}

// BanUser refuses a pending signup. The outcome is negative but the
// decision is still attributed to the reviewer for audit.
func (s *Service) BanUser(ctx context.Context, reviewer *users.User, userID int64) (*users.User, error) {
	if !reviewer.Rank.CanAdministrate() {
		return nil, ErrUnauthorized
	}
	u, err := s.users.Ban(ctx, userID, reviewer.ID)
	if err != nil {
		return nil, translate(err)
	}
	s.log.Info("user banned", "user_id", u.ID, "reviewer_id", reviewer.ID)
	metrics.Decisions.WithLabelValues("user", "banned").Inc()
	return u, nil
}

// ApproveApplication approves a pending job application and grants the
// job to the applicant in the same transaction.
func (s *Service) ApproveApplication(ctx context.Context, reviewer *users.User, appID int64) (*applications.Application, error) {
	if !reviewer.Rank.CanAdministrate() {
		return nil, ErrUnauthorized
	}
	a, err := s.apps.Approve(ctx, appID, reviewer.ID)
	if err != nil {
		return nil, translate(err)
	}
	s.log.Info("application approved", "application_id", a.ID, "job", a.Job, "reviewer_id", reviewer.ID)
	metrics.Decisions.WithLabelValues("application", "approved").Inc()
	return a, nil
}

func (s *Service) RejectApplication(ctx context.Context, reviewer *users.User, appID int64) (*applications.Application, error) {
	if !reviewer.Rank.CanAdministrate() {
		return nil, ErrUnauthorized
	}
	a, err := s.apps.Reject(ctx, appID, reviewer.ID)
	if err != nil {
		return nil, translate(err)
	}
	s.log.Info("application rejected", "application_id", a.ID, "reviewer_id", reviewer.ID)
	metrics.Decisions.WithLabelValues("application", "rejected").Inc()
	return a, nil
}

// PendingUsers returns signups awaiting review, oldest first.
func (s *Service) PendingUsers(ctx context.Context, reviewer *users.User) ([]users.User, error) {
	if !reviewer.Rank.CanAdministrate() {
		return nil, ErrUnauthorized
	}
	return s.users.ListPending(ctx)
}

func (s *Service) RecentUsers(ctx context.Context, reviewer *users.User, limit int) ([]users.User, error) {
	if !reviewer.Rank.CanAdministrate() {
		return nil, ErrUnauthorized
	}
	return s.users.ListDecided(ctx, normalizeLimit(limit))
}

func (s *Service) PendingApplications(ctx context.Context, reviewer *users.User) ([]applications.Application, error) {
	if !reviewer.Rank.CanAdministrate() {
		return nil, ErrUnauthorized
	}
	return s.apps.ListPending(ctx)
}

func (s *Service) RecentApplications(ctx context.Context, reviewer *users.User, limit int) ([]applications.Application, error) {
	if !reviewer.Rank.CanAdministrate() {
		return nil, ErrUnauthorized
	}
	return s.apps.ListDecided(ctx, normalizeLimit(limit))
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

// translate maps store sentinels onto the workflow taxonomy.
func translate(err error) error {
	switch {
	case errors.Is(err, users.ErrNotFound), errors.Is(err, applications.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, users.ErrNotPending), errors.Is(err, applications.ErrNotPending):
		return ErrInvalidState
	case errors.Is(err, applications.ErrUnknownJob):
		return ErrConstraint
	}
	return err
}
