package artefacts

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// ListFilter narrows the artefact listing. OwnerID is set by the handler
// when the caller asks for mine=true.
type ListFilter struct {
	ProjectID *int64
	TagID     *int64
	Status    string
	OwnerID   *int64
}

// ListItem is the denormalized artefact row returned to clients.
type ListItem struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	CreatedOn       time.Time `json:"created_on"`
	ReviewDueOn     time.Time `json:"review_due_on"`
	Confidentiality string    `json:"confidentiality"`
	TrustLevel      string    `json:"trust_level"`
	Category        *string   `json:"category,omitempty"`
	ProjectID       *int64    `json:"project_id,omitempty"`
	ProjectName     *string   `json:"projectName,omitempty"`
	WorkspaceID     *int64    `json:"workspace_id,omitempty"`
	WorkspaceName   *string   `json:"workspaceName,omitempty"`
	OwnerName       string    `json:"ownerName"`
	Tags            string    `json:"tags"`
}

func (r *Repo) List(ctx context.Context, f ListFilter) ([]ListItem, error) {
	q := `
select a.id, a.title, coalesce(a.description, ''), a.status, a.created_on, a.review_due_on,
       a.confidentiality, a.trust_level, a.category,
       a.project_id, p.name as project_name,
       a.workspace_id, w.name as workspace_name,
       c.name as owner_name,
       coalesce(string_agg(t.name, ', ' order by t.name), '') as tags
from knowledge_artefacts a
join consultants c on c.id = a.owner_id
left join projects p on p.id = a.project_id
left join workspaces w on w.id = a.workspace_id
left join artefact_tags at on at.artefact_id = a.id
left join tags t on t.id = at.tag_id
`

	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.ProjectID != nil {
		conditions = append(conditions, "a.project_id = "+arg(*f.ProjectID))
	}
	if f.Status != "" {
		conditions = append(conditions, "a.status = "+arg(f.Status))
	}
	if f.OwnerID != nil {
		conditions = append(conditions, "a.owner_id = "+arg(*f.OwnerID))
	}
	if f.TagID != nil {
		conditions = append(conditions, "a.id in (select artefact_id from artefact_tags where tag_id = "+arg(*f.TagID)+")")
	}

	for i, cond := range conditions {
		if i == 0 {
			q += " where " + cond
		} else {
			q += " and " + cond
		}
	}

	q += `
group by a.id, p.name, w.name, c.name
order by a.created_on desc;
`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list artefacts: %w", err)
	}
	defer rows.Close()

	out := make([]ListItem, 0, 16)
	for rows.Next() {
		var it ListItem
		if err := rows.Scan(
			&it.ID, &it.Title, &it.Description, &it.Status, &it.CreatedOn, &it.ReviewDueOn,
			&it.Confidentiality, &it.TrustLevel, &it.Category,
			&it.ProjectID, &it.ProjectName,
			&it.WorkspaceID, &it.WorkspaceName,
			&it.OwnerName, &it.Tags,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
