package services

import (
	"context"
	"log/slog"

	"inkfeed/app/auth"
	"inkfeed/app/domain"
	"inkfeed/app/models"
)

// Stage is how far a mutation got through the gate.
type Stage int

const (
	StageReceived Stage = iota
	StageCredentialChecked
	StageOwnershipChecked
	StageValidated
	StageCommitted
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageCredentialChecked:
		return "credential_checked"
	case StageOwnershipChecked:
		return "ownership_checked"
	case StageValidated:
		return "validated"
	case StageCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// Operation names a gated mutation.
type Operation string

const (
	OpCreatePost   Operation = "create_post"
	OpUpdatePost   Operation = "update_post"
	OpDeletePost   Operation = "delete_post"
	OpUpdateStatus Operation = "update_status"
)

// targetsPost reports whether the operation acts on an existing post.
func (op Operation) targetsPost() bool {
	return op == OpUpdatePost || op == OpDeletePost
}

// Input is anything that can report its own field errors.
type Input interface {
	Validate() domain.FieldErrors
}

// Mutation is one write request presented to the gate.
type Mutation struct {
	Op       Operation
	Identity auth.Identity
	PostID   string
	Input    Input
}

// Admission is what the gate hands back when a mutation may proceed.
type Admission struct {
	UserID string
	// Post is the loaded, owned post for operations that target one.
	Post  *models.Post
	stage Stage
}

// Stage returns the last stage the mutation passed.
func (a *Admission) Stage() Stage { return a.stage }

// Commit records that the store write went through.
func (a *Admission) Commit() { a.stage = StageCommitted }

// Gate runs authentication, ownership and validation, in that order, before
// any store write. The first failure wins.
type Gate struct {
	guard  *OwnershipGuard
	logger *slog.Logger
}

// NewGate creates a new Gate
func NewGate(guard *OwnershipGuard, logger *slog.Logger) *Gate {
	return &Gate{guard: guard, logger: logger}
}

// Admit checks m and returns an admission, or the error of the first check
// that failed.
func (g *Gate) Admit(ctx context.Context, m Mutation) (*Admission, error) {
	adm := &Admission{stage: StageReceived}

	if err := m.Identity.Require(); err != nil {
		return nil, g.reject(ctx, m, adm.stage, err)
	}
	adm.UserID = m.Identity.UserID
	adm.stage = StageCredentialChecked

	if m.Op.targetsPost() {
		post, err := g.guard.Authorize(m.Identity, m.PostID)
		if err != nil {
			return nil, g.reject(ctx, m, adm.stage, err)
		}
		adm.Post = post
		adm.stage = StageOwnershipChecked
	}

	if m.Input != nil {
		if errs := m.Input.Validate(); len(errs) > 0 {
			return nil, g.reject(ctx, m, adm.stage, domain.Invalid("Validation failed, entered data is incorrect.", errs))
		}
	}
	adm.stage = StageValidated

	return adm, nil
}

func (g *Gate) reject(ctx context.Context, m Mutation, reached Stage, err error) error {
	de := domain.As(err)
	g.logger.DebugContext(ctx, "mutation rejected",
		"op", string(m.Op),
		"stage", reached.String(),
		"kind", de.Kind.String(),
		"user_id", m.Identity.UserID,
		"post_id", m.PostID,
	)
	return de
}
