package store

import (
	"context"
	"fmt"
	"time"

	"github.com/velion-digital/dkn-backend/internal/governance/domain"
)

// PendingArtefact is the review-queue row shown to governance roles.
type PendingArtefact struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	Confidentiality string    `json:"confidentiality"`
	Category        *string   `json:"category,omitempty"`
	CreatedOn       time.Time `json:"created_on"`
	ReviewDueOn     time.Time `json:"review_due_on"`
	OwnerName       string    `json:"ownerName"`
	Tags            string    `json:"tags"`
}

// ListRules returns the whole catalog, ordered by category then name.
func (s *Postgres) ListRules(ctx context.Context) ([]domain.GovernanceRule, error) {
	const q = `
select id, name, artefact_category, max_review_interval_months, retention_years, mandatory_metadata
from governance_rules
order by artefact_category, name;
`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	out := make([]domain.GovernanceRule, 0, 8)
	for rows.Next() {
		var r domain.GovernanceRule
		if err := rows.Scan(&r.ID, &r.Name, &r.ArtefactCategory, &r.MaxReviewIntervalMonths, &r.RetentionYears, &r.MandatoryMetadata); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListPending returns artefacts awaiting review, oldest first.
func (s *Postgres) ListPending(ctx context.Context) ([]PendingArtefact, error) {
	const q = `
select a.id, a.title, coalesce(a.description, ''), a.status, a.confidentiality,
       a.category, a.created_on, a.review_due_on,
       c.name as owner_name,
       coalesce(string_agg(t.name, ', ' order by t.name), '') as tags
from knowledge_artefacts a
join consultants c on c.id = a.owner_id
left join artefact_tags at on at.artefact_id = a.id
left join tags t on t.id = at.tag_id
where a.status = $1
group by a.id, c.name
order by a.created_on asc;
`
	rows, err := s.db.Query(ctx, q, domain.StatusPendingReview)
	if err != nil {
		return nil, fmt.Errorf("list pending artefacts: %w", err)
	}
	defer rows.Close()

	out := make([]PendingArtefact, 0, 16)
	for rows.Next() {
		var p PendingArtefact
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Status, &p.Confidentiality,
			&p.Category, &p.CreatedOn, &p.ReviewDueOn, &p.OwnerName, &p.Tags); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FlagOverdue attaches a Medium Outdated flag to every Trusted artefact whose
// review date has passed and which does not already carry an Outdated flag.
// Returns the number of artefacts flagged.
func (s *Postgres) FlagOverdue(ctx context.Context, asOf time.Time) (int, error) {
	const q = `
insert into quality_flags (artefact_id, type, severity, created_on)
select a.id, $1, $2, $3
from knowledge_artefacts a
where a.status = $4
  and a.review_due_on < $3
  and not exists (
        select 1 from quality_flags f
        where f.artefact_id = a.id and f.type = $1
  );
`
	tag, err := s.db.Exec(ctx, q, domain.FlagOutdated, domain.SeverityMedium, asOf, domain.StatusTrusted)
	if err != nil {
		return 0, fmt.Errorf("flag overdue artefacts: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
