package tags

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Tag struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category *string `json:"category,omitempty"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) List(ctx context.Context) ([]Tag, error) {
	const q = `select id, name, category from tags order by name;`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	out := make([]Tag, 0, 16)
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Category); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func Register(rg *gin.RouterGroup, repo *Repo) {
	rg.GET("", func(c *gin.Context) {
		items, err := repo.List(c.Request.Context())
		if err != nil {
			log.Printf("tags: list: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, items)
	})
}
