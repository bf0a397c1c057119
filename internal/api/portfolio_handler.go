package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-review-api/internal/flash"
	"github.com/portfolio-review-api/internal/models"
	"github.com/portfolio-review-api/internal/service"
	"github.com/rs/zerolog"
)

// PortfolioHandler handles portfolio comment endpoints
type PortfolioHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(services *service.Services, log zerolog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		services: services,
		log:      log.With().Str("handler", "portfolio").Logger(),
	}
}

// UpdatedPortfolios handles GET /v1/portfolios
// Lists registered portfolios with unread comments for the caller; reviewers
// only
func (h *PortfolioHandler) UpdatedPortfolios(c *gin.Context) {
	ctx := c.Request.Context()

	identity := currentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	allowed, err := h.services.Account.IsReviewer(ctx, identity.Email)
	if err != nil && !errors.Is(err, service.ErrAccountNotFound) {
		h.log.Error().Err(err).Msg("Failed to check privilege")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check privilege"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	statuses, err := h.services.Review.UpdatedPortfolios(ctx, identity)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list updated portfolios")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list portfolios"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"portfolios": statuses})
}

// Overview handles GET /v1/portfolios/:email/overview
// Returns the per-section unread counts for a portfolio and acknowledges the
// profile-wide visit
func (h *PortfolioHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	identity, profile, ok := h.gateAccess(c)
	if !ok {
		return
	}

	summary, err := h.services.Review.UnreadSummary(ctx, identity, profile.Email)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute unread summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load overview"})
		return
	}

	if err := h.services.Review.MarkViewed(ctx, identity, profile.Email, nil); err != nil {
		h.log.Error().Err(err).Msg("Failed to mark profile viewed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load overview"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":  profile.ToResponse(),
		"sections": h.services.Review.Sections(),
		"unread":   summary,
	})
}

// Section handles GET /v1/portfolios/:email/sections/:section
// Returns the new/old comment split for a section and acknowledges the visit
func (h *PortfolioHandler) Section(c *gin.Context) {
	ctx := c.Request.Context()

	identity, profile, ok := h.gateAccess(c)
	if !ok {
		return
	}

	sectionName := c.Param("section")
	if !models.ValidSection(sectionName) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown portfolio section"})
		return
	}

	newComments, err := h.services.Review.NewComments(ctx, identity, profile.Email, &sectionName)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load new comments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}
	oldComments, err := h.services.Review.OldComments(ctx, identity, profile.Email, &sectionName)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load old comments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}

	summary, err := h.services.Review.UnreadSummary(ctx, identity, profile.Email)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute unread summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}

	// Acknowledge after the split is computed, so this response still shows
	// the just-read comments as new
	if err := h.services.Review.MarkViewed(ctx, identity, profile.Email, &sectionName); err != nil {
		h.log.Error().Err(err).Msg("Failed to mark section viewed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":      profile.ToResponse(),
		"section":      sectionName,
		"new_comments": newComments,
		"old_comments": oldComments,
		"unread":       summary,
	})
}

// AddComment handles POST /v1/portfolios/:email/sections/:section/comments
// Leaves a private comment on a portfolio section
func (h *PortfolioHandler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()

	identity, profile, ok := h.gateAccess(c)
	if !ok {
		return
	}

	sectionName := c.Param("section")

	var req struct {
		Contents string `json:"contents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Contents == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contents is required"})
		return
	}

	comment, err := h.services.Review.AddComment(ctx, identity, profile.Email, sectionName, req.Contents)
	if errors.Is(err, service.ErrUnknownSection) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown portfolio section"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to add comment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add comment"})
		return
	}

	if err := h.services.Flash.Set(ctx, identity.Email, flash.TypeConfirmation,
		"Your comment was added."); err != nil {
		h.log.Error().Err(err).Msg("Failed to set flash message")
	}

	c.JSON(http.StatusCreated, comment)
}

// gateAccess resolves the :email path parameter to a profile and applies the
// access decision. Unauthenticated callers get 401, denied callers 403,
// unregistered profiles 404. Returns false when a response has been written.
func (h *PortfolioHandler) gateAccess(c *gin.Context) (*models.Identity, *models.Account, bool) {
	ctx := c.Request.Context()

	identity := currentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, nil, false
	}

	profile, err := h.services.Account.ResolveProfile(ctx, c.Param("email"))
	if errors.Is(err, service.ErrAccountNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "portfolio not found"})
		return nil, nil, false
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve profile"})
		return nil, nil, false
	}

	allowed, err := h.services.Account.HasAccess(ctx, identity, profile.Email)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to check access")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check access"})
		return nil, nil, false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return nil, nil, false
	}
	return identity, profile, true
}
