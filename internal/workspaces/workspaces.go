package workspaces

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velion-digital/dkn-backend/internal/auth"
)

var ErrWorkspaceNotFound = errors.New("workspace not found")

type Workspace struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	ProjectID   *int64  `json:"project_id,omitempty"`
	ProjectName *string `json:"projectName,omitempty"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) List(ctx context.Context) ([]Workspace, error) {
	const q = `
select w.id, w.name, w.type, w.project_id, p.name as project_name
from workspaces w
left join projects p on p.id = w.project_id
order by w.name;
`
	return r.queryList(ctx, q)
}

func (r *Repo) ListMine(ctx context.Context, consultantID int64) ([]Workspace, error) {
	const q = `
select w.id, w.name, w.type, w.project_id, p.name as project_name
from workspaces w
join workspace_members m on m.workspace_id = w.id
left join projects p on p.id = w.project_id
where m.consultant_id = $1
order by w.name;
`
	return r.queryList(ctx, q, consultantID)
}

// Join adds the consultant to the workspace (idempotent) and returns the
// member count.
func (r *Repo) Join(ctx context.Context, workspaceID, consultantID int64) (int, error) {
	var exists int64
	err := r.db.QueryRow(ctx, `select id from workspaces where id = $1`, workspaceID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrWorkspaceNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load workspace: %w", err)
	}

	const insert = `
insert into workspace_members (workspace_id, consultant_id)
values ($1, $2)
on conflict do nothing;
`
	if _, err := r.db.Exec(ctx, insert, workspaceID, consultantID); err != nil {
		return 0, fmt.Errorf("join workspace: %w", err)
	}

	var count int
	err = r.db.QueryRow(ctx, `select count(*) from workspace_members where workspace_id = $1`, workspaceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

func (r *Repo) queryList(ctx context.Context, q string, args ...any) ([]Workspace, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	out := make([]Workspace, 0, 8)
	for rows.Next() {
		var w Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.Type, &w.ProjectID, &w.ProjectName); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

type Handler struct {
	repo *Repo
}

func Register(rg *gin.RouterGroup, repo *Repo) {
	h := &Handler{repo: repo}

	rg.GET("", h.list)
	rg.GET("/mine", h.listMine)
	rg.POST("/:id/join", h.join)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context())
	if err != nil {
		log.Printf("workspaces: list: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) listMine(c *gin.Context) {
	claims := auth.CurrentUser(c)
	items, err := h.repo.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		log.Printf("workspaces: list mine: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) join(c *gin.Context) {
	workspaceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid workspace id"})
		return
	}

	claims := auth.CurrentUser(c)
	count, err := h.repo.Join(c.Request.Context(), workspaceID, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrWorkspaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Workspace not found"})
			return
		}
		log.Printf("workspaces: join: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "memberCount": count})
}
