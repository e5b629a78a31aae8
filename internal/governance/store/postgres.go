package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velion-digital/dkn-backend/internal/governance/domain"
	"github.com/velion-digital/dkn-backend/internal/governance/engine"
)

// Postgres implements engine.Store on a pgx pool. One InTx call is one
// database transaction; rollback on any error, commit otherwise.
type Postgres struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) InTx(ctx context.Context, fn func(tx engine.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) RulesForCategory(ctx context.Context, category *string) ([]domain.GovernanceRule, error) {
	const q = `
select id, name, artefact_category, max_review_interval_months, retention_years, mandatory_metadata
from governance_rules
where artefact_category = $1
order by id;
`
	rows, err := t.tx.Query(ctx, q, category)
	if err != nil {
		return nil, fmt.Errorf("rules for category: %w", err)
	}
	defer rows.Close()

	out := make([]domain.GovernanceRule, 0, 4)
	for rows.Next() {
		var r domain.GovernanceRule
		if err := rows.Scan(&r.ID, &r.Name, &r.ArtefactCategory, &r.MaxReviewIntervalMonths, &r.RetentionYears, &r.MandatoryMetadata); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (t *pgTx) InsertArtefact(ctx context.Context, a *domain.Artefact) (int64, error) {
	const q = `
insert into knowledge_artefacts
	(title, description, status, created_on, review_due_on, confidentiality,
	 trust_level, category, owner_id, project_id, workspace_id)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
returning id;
`
	var id int64
	err := t.tx.QueryRow(ctx, q,
		a.Title, a.Description, a.Status, a.CreatedOn, a.ReviewDueOn,
		a.Confidentiality, a.TrustLevel, a.Category, a.OwnerID, a.ProjectID, a.WorkspaceID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert artefact: %w", err)
	}
	return id, nil
}

func (t *pgTx) LinkTags(ctx context.Context, artefactID int64, tagIDs []int64) error {
	const q = `insert into artefact_tags (artefact_id, tag_id) values ($1, $2);`
	for _, tagID := range tagIDs {
		if _, err := t.tx.Exec(ctx, q, artefactID, tagID); err != nil {
			return fmt.Errorf("link tag %d: %w", tagID, err)
		}
	}
	return nil
}

func (t *pgTx) BindRules(ctx context.Context, artefactID int64, ruleIDs []int64) error {
	const q = `insert into artefact_governance_rules (artefact_id, rule_id) values ($1, $2);`
	for _, ruleID := range ruleIDs {
		if _, err := t.tx.Exec(ctx, q, artefactID, ruleID); err != nil {
			return fmt.Errorf("bind rule %d: %w", ruleID, err)
		}
	}
	return nil
}

func (t *pgTx) GetArtefactForUpdate(ctx context.Context, id int64) (*domain.Artefact, error) {
	const q = `
select id, title, coalesce(description, ''), status, trust_level, confidentiality,
       category, created_on, review_due_on, owner_id, project_id, workspace_id
from knowledge_artefacts
where id = $1
for update;
`
	var a domain.Artefact
	err := t.tx.QueryRow(ctx, q, id).Scan(
		&a.ID, &a.Title, &a.Description, &a.Status, &a.TrustLevel, &a.Confidentiality,
		&a.Category, &a.CreatedOn, &a.ReviewDueOn, &a.OwnerID, &a.ProjectID, &a.WorkspaceID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrArtefactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load artefact: %w", err)
	}
	return &a, nil
}

func (t *pgTx) CountFlags(ctx context.Context, artefactID int64, flagType string) (int, error) {
	const q = `select count(*) from quality_flags where artefact_id = $1 and type = $2;`
	var n int
	if err := t.tx.QueryRow(ctx, q, artefactID, flagType).Scan(&n); err != nil {
		return 0, fmt.Errorf("count flags: %w", err)
	}
	return n, nil
}

func (t *pgTx) InsertFlag(ctx context.Context, f *domain.QualityFlag) error {
	const q = `
insert into quality_flags (artefact_id, type, severity, created_on, reference_artefact_id)
values ($1, $2, $3, $4, $5);
`
	if _, err := t.tx.Exec(ctx, q, f.ArtefactID, f.Type, f.Severity, f.CreatedOn, f.ReferenceArtefactID); err != nil {
		return fmt.Errorf("insert quality flag: %w", err)
	}
	return nil
}

func (t *pgTx) UpdateArtefactState(ctx context.Context, id int64, status, trustLevel string) error {
	const q = `update knowledge_artefacts set status = $2, trust_level = $3 where id = $1;`
	if _, err := t.tx.Exec(ctx, q, id, status, trustLevel); err != nil {
		return fmt.Errorf("update artefact state: %w", err)
	}
	return nil
}

func (t *pgTx) AppendAction(ctx context.Context, a *domain.GovernanceAction) error {
	const q = `
insert into governance_actions (artefact_id, reviewer_id, action, comments, created_on)
values ($1, $2, $3, $4, $5);
`
	if _, err := t.tx.Exec(ctx, q, a.ArtefactID, a.ReviewerID, a.Action, a.Comments, a.CreatedOn); err != nil {
		return fmt.Errorf("append governance action: %w", err)
	}
	return nil
}
