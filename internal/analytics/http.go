package analytics

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo  *Repo
	cache *Cache
}

func Register(rg *gin.RouterGroup, repo *Repo, cache *Cache) {
	h := &Handler{repo: repo, cache: cache}

	rg.GET("/leaderboard", h.leaderboard)
}

func (h *Handler) leaderboard(c *gin.Context) {
	var regionID *int64
	if v := c.Query("regionId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid regionId"})
			return
		}
		regionID = &id
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid limit"})
			return
		}
		limit = n
	}

	ctx := c.Request.Context()

	// The cache holds unlimited results per region; limit is applied after.
	if entries := h.cache.Get(ctx, regionID); entries != nil {
		c.JSON(http.StatusOK, applyLimit(entries, limit))
		return
	}

	entries, err := h.repo.Leaderboard(ctx, regionID, 0)
	if err != nil {
		log.Printf("analytics: leaderboard: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	h.cache.Set(ctx, regionID, entries)
	c.JSON(http.StatusOK, applyLimit(entries, limit))
}

func applyLimit(entries []LeaderboardEntry, limit int) []LeaderboardEntry {
	if limit > 0 && limit < len(entries) {
		return entries[:limit]
	}
	return entries
}
