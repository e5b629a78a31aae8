package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/velion-digital/dkn-backend/internal/auth"
	"github.com/velion-digital/dkn-backend/internal/governance/domain"
	"github.com/velion-digital/dkn-backend/internal/governance/store"
)

// Decider is the slice of the governance engine this surface needs.
type Decider interface {
	Decide(ctx context.Context, req domain.DecideRequest) (*domain.DecideResult, error)
}

// Catalog serves the read-only listings.
type Catalog interface {
	ListRules(ctx context.Context) ([]domain.GovernanceRule, error)
	ListPending(ctx context.Context) ([]store.PendingArtefact, error)
}

type Handler struct {
	engine  Decider
	catalog Catalog
}

// Register mounts the governance surface. Every route is gated to the
// governance roles on top of the group's auth middleware.
func Register(rg *gin.RouterGroup, eng Decider, catalog Catalog) {
	h := &Handler{engine: eng, catalog: catalog}

	gated := rg.Group("", auth.RequireRole(auth.GovernanceRoles...))
	gated.GET("/rules", h.listRules)
	gated.GET("/pending-artefacts", h.listPending)
	gated.POST("/artefacts/:id/review", h.review)
}

func (h *Handler) listRules(c *gin.Context) {
	rules, err := h.catalog.ListRules(c.Request.Context())
	if err != nil {
		log.Printf("governance: list rules: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (h *Handler) listPending(c *gin.Context) {
	pending, err := h.catalog.ListPending(c.Request.Context())
	if err != nil {
		log.Printf("governance: list pending artefacts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, pending)
}

type reviewReq struct {
	Decision string `json:"decision"`
	Comments string `json:"comments"`
}

func (h *Handler) review(c *gin.Context) {
	artefactID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid artefact id"})
		return
	}

	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	claims := auth.CurrentUser(c)
	result, err := h.engine.Decide(c.Request.Context(), domain.DecideRequest{
		ArtefactID: artefactID,
		ReviewerID: claims.UserID,
		Decision:   req.Decision,
		Comments:   req.Comments,
	})
	if err != nil {
		respondDecisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"status":     result.Status,
		"trustLevel": result.TrustLevel,
		"decision":   result.Decision,
	})
}

// respondDecisionError maps the engine's error taxonomy onto HTTP statuses.
// Storage errors surface as a generic 500 without internal detail.
func respondDecisionError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	var pErr *domain.PolicyError

	switch {
	case errors.Is(err, domain.ErrArtefactNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Artefact not found"})
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": vErr.Reason})
	case errors.As(err, &pErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": pErr.Reason})
	default:
		log.Printf("governance: review: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
