package artefacts

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/velion-digital/dkn-backend/internal/auth"
	"github.com/velion-digital/dkn-backend/internal/governance/domain"
)

// Admitter is the slice of the governance engine used at creation time.
type Admitter interface {
	Admit(ctx context.Context, req domain.AdmitRequest) (*domain.Artefact, error)
}

type Handler struct {
	repo   *Repo
	engine Admitter
}

func Register(rg *gin.RouterGroup, repo *Repo, eng Admitter) {
	h := &Handler{repo: repo, engine: eng}

	rg.GET("", h.list)
	rg.POST("", h.create)
}

func (h *Handler) list(c *gin.Context) {
	var f ListFilter

	if v := c.Query("projectId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid projectId"})
			return
		}
		f.ProjectID = &id
	}
	if v := c.Query("tagId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid tagId"})
			return
		}
		f.TagID = &id
	}
	f.Status = c.Query("status")
	if c.Query("mine") == "true" {
		claims := auth.CurrentUser(c)
		f.OwnerID = &claims.UserID
	}

	items, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		log.Printf("artefacts: list: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type createReq struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	ProjectID       *int64  `json:"projectId"`
	WorkspaceID     *int64  `json:"workspaceId"`
	Confidentiality string  `json:"confidentiality"`
	Category        *string `json:"category"`
	TagIDs          []int64 `json:"tagIds"`
	ReviewDueOn     string  `json:"reviewDueOn"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if req.Title == "" || req.Confidentiality == "" || req.ReviewDueOn == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title, confidentiality and reviewDueOn are required."})
		return
	}

	reviewDue, err := time.Parse("2006-01-02", req.ReviewDueOn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "reviewDueOn must be a date (YYYY-MM-DD)."})
		return
	}

	claims := auth.CurrentUser(c)
	artefact, err := h.engine.Admit(c.Request.Context(), domain.AdmitRequest{
		Title:           req.Title,
		Description:     req.Description,
		Confidentiality: req.Confidentiality,
		Category:        req.Category,
		ReviewDueOn:     reviewDue,
		TagIDs:          req.TagIDs,
		ProjectID:       req.ProjectID,
		WorkspaceID:     req.WorkspaceID,
		OwnerID:         claims.UserID,
	})
	if err != nil {
		var vErr *domain.ValidationError
		var pErr *domain.PolicyError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"message": vErr.Reason})
			return
		}
		if errors.As(err, &pErr) {
			c.JSON(http.StatusBadRequest, gin.H{"message": pErr.Reason})
			return
		}
		log.Printf("artefacts: create: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      artefact.ID,
		"message": "Artefact created and pending review.",
	})
}
