package projects

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velion-digital/dkn-backend/internal/auth"
)

type Project struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Sector     *string `json:"sector,omitempty"`
	ClientName string  `json:"clientName"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// List returns all projects, or only the consultant's assignments when
// mineFor is set.
func (r *Repo) List(ctx context.Context, mineFor *int64) ([]Project, error) {
	q := `
select p.id, p.name, p.status, p.sector, c.name as client_name
from projects p
join clients c on c.id = p.client_id
`
	args := []any{}
	if mineFor != nil {
		q += `
join consultant_projects cp on cp.project_id = p.id
where cp.consultant_id = $1
`
		args = append(args, *mineFor)
	}
	q += `order by p.name;`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]Project, 0, 8)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.Sector, &p.ClientName); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func Register(rg *gin.RouterGroup, repo *Repo) {
	rg.GET("", func(c *gin.Context) {
		var mineFor *int64
		if c.Query("mine") == "true" {
			claims := auth.CurrentUser(c)
			mineFor = &claims.UserID
		}

		items, err := repo.List(c.Request.Context(), mineFor)
		if err != nil {
			log.Printf("projects: list: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, items)
	})
}
