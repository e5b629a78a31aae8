package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LeaderboardEntry is one consultant's contribution record. Score weights:
// trusted artefacts count most, then governance work, then pipeline and
// collaboration.
type LeaderboardEntry struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Role              string `json:"role"`
	RegionID          int64  `json:"region_id"`
	RegionName        string `json:"regionName"`
	OfficeID          int64  `json:"office_id"`
	OfficeName        string `json:"officeName"`
	TrustedCount      int    `json:"trusted_count"`
	PendingCount      int    `json:"pending_count"`
	GovernanceActions int    `json:"governance_actions"`
	WorkspaceCount    int    `json:"workspace_count"`
	Score             int    `json:"score"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Leaderboard(ctx context.Context, regionID *int64, limit int) ([]LeaderboardEntry, error) {
	q := `
select c.id, c.name, c.role,
       c.region_id, r.name as region_name,
       c.office_id, o.name as office_name,
       coalesce(t.trusted_count, 0),
       coalesce(p.pending_count, 0),
       coalesce(g.gov_actions, 0),
       coalesce(w.workspace_count, 0)
from consultants c
join offices o on o.id = c.office_id
join regions r on r.id = c.region_id
left join (
	select owner_id as consultant_id, count(*) as trusted_count
	from knowledge_artefacts
	where trust_level = 'Trusted'
	group by owner_id
) t on t.consultant_id = c.id
left join (
	select owner_id as consultant_id, count(*) as pending_count
	from knowledge_artefacts
	where status = 'PendingReview'
	group by owner_id
) p on p.consultant_id = c.id
left join (
	select reviewer_id as consultant_id, count(*) as gov_actions
	from governance_actions
	group by reviewer_id
) g on g.consultant_id = c.id
left join (
	select consultant_id, count(distinct workspace_id) as workspace_count
	from workspace_members
	group by consultant_id
) w on w.consultant_id = c.id
`
	args := []any{}
	if regionID != nil {
		q += `where c.region_id = $1`
		args = append(args, *regionID)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}
	defer rows.Close()

	out := make([]LeaderboardEntry, 0, 16)
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Role,
			&e.RegionID, &e.RegionName,
			&e.OfficeID, &e.OfficeName,
			&e.TrustedCount, &e.PendingCount, &e.GovernanceActions, &e.WorkspaceCount,
		); err != nil {
			return nil, err
		}
		e.Score = e.TrustedCount*10 + e.PendingCount*3 + e.GovernanceActions*5 + e.WorkspaceCount*2
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
