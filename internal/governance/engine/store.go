package engine

import (
	"context"

	"github.com/velion-digital/dkn-backend/internal/governance/domain"
)

// Store is the persistence contract the engine runs against. Each call to
// InTx is one atomic unit: the callback either commits in full or leaves the
// store untouched. The engine never talks to the database outside a Tx.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of operations available inside one transaction. The artefact
// read takes a row lock so concurrent decisions on the same artefact
// serialize instead of racing their precondition checks.
type Tx interface {
	// RulesForCategory returns every governance rule whose category matches,
	// ordered by id. A nil category is a literal key; an empty result is not
	// an error.
	RulesForCategory(ctx context.Context, category *string) ([]domain.GovernanceRule, error)

	InsertArtefact(ctx context.Context, a *domain.Artefact) (int64, error)
	LinkTags(ctx context.Context, artefactID int64, tagIDs []int64) error
	BindRules(ctx context.Context, artefactID int64, ruleIDs []int64) error

	// GetArtefactForUpdate returns domain.ErrArtefactNotFound when no row
	// exists.
	GetArtefactForUpdate(ctx context.Context, id int64) (*domain.Artefact, error)
	CountFlags(ctx context.Context, artefactID int64, flagType string) (int, error)
	InsertFlag(ctx context.Context, f *domain.QualityFlag) error
	UpdateArtefactState(ctx context.Context, id int64, status, trustLevel string) error
	AppendAction(ctx context.Context, a *domain.GovernanceAction) error
}
