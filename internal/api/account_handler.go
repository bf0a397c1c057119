package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-review-api/internal/config"
	"github.com/portfolio-review-api/internal/flash"
	"github.com/portfolio-review-api/internal/models"
	"github.com/portfolio-review-api/internal/service"
	"github.com/portfolio-review-api/internal/validation"
	"github.com/rs/zerolog"
)

// AccountHandler handles account and administration endpoints
type AccountHandler struct {
	services *service.Services
	checker  *validation.EmailChecker
	log      zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		services: services,
		checker:  validation.NewEmailChecker(cfg.App.EmailDomain),
		log:      log.With().Str("handler", "account").Logger(),
	}
}

// SyncAccount handles POST /v1/accounts/sync
// Ensures the signed-in caller has an account, creating one on first sight
func (h *AccountHandler) SyncAccount(c *gin.Context) {
	ctx := c.Request.Context()

	identity := currentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if !h.checker.Check(identity.Email) {
		if err := h.services.Flash.Set(ctx, identity.Email, flash.TypeError,
			"Please sign in with your institutional email address."); err != nil {
			h.log.Error().Err(err).Msg("Failed to set flash message")
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "email is not an individual institutional address"})
		return
	}

	account, err := h.services.Account.EnsureAccount(ctx, identity)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to ensure account")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync account"})
		return
	}

	c.JSON(http.StatusOK, account.ToResponse())
}

// ListAccounts handles GET /v1/accounts
// Returns all registered accounts sorted by name; reviewers only
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	ctx := c.Request.Context()

	if _, ok := h.requireReviewer(c); !ok {
		return
	}

	accounts, err := h.services.Account.ListAccounts(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list accounts"})
		return
	}

	responses := make([]models.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		responses = append(responses, a.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"accounts": responses})
}

// PromoteReviewer handles POST /v1/accounts/:email/promote-reviewer
// Grants reviewer privilege to the target account; admins only
func (h *AccountHandler) PromoteReviewer(c *gin.Context) {
	h.promote(c, "reviewer", h.services.Account.PromoteToReviewer)
}

// PromoteAdmin handles POST /v1/accounts/:email/promote-admin
// Grants admin privilege to the target account; admins only
func (h *AccountHandler) PromoteAdmin(c *gin.Context) {
	h.promote(c, "administrator", h.services.Account.PromoteToAdmin)
}

func (h *AccountHandler) promote(c *gin.Context, label string, promote func(ctx context.Context, targetEmail string) (*models.Account, error)) {
	ctx := c.Request.Context()

	identity, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	targetEmail := validation.UnsafeEmail(c.Param("email"))
	account, err := promote(ctx, targetEmail)
	if errors.Is(err, service.ErrAccountNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("target", targetEmail).Msg("Failed to promote account")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to promote account"})
		return
	}

	if err := h.services.Flash.Set(ctx, identity.Email, flash.TypeConfirmation,
		fmt.Sprintf("%s is now a %s.", account.Email, label)); err != nil {
		h.log.Error().Err(err).Msg("Failed to set flash message")
	}

	c.JSON(http.StatusOK, account.ToResponse())
}

// GetFlash handles GET /v1/flash
// Pops the caller's pending notice; reading clears it
func (h *AccountHandler) GetFlash(c *gin.Context) {
	ctx := c.Request.Context()

	identity := currentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	msg, err := h.services.Flash.Pop(ctx, identity.Email)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to pop flash message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read flash message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"flash": msg})
}

// requireReviewer resolves the caller and rejects non-reviewers. Returns
// false when a response has already been written.
func (h *AccountHandler) requireReviewer(c *gin.Context) (*models.Identity, bool) {
	return h.requirePrivilege(c, h.services.Account.IsReviewer)
}

// requireAdmin resolves the caller and rejects non-admins
func (h *AccountHandler) requireAdmin(c *gin.Context) (*models.Identity, bool) {
	return h.requirePrivilege(c, h.services.Account.IsAdmin)
}

func (h *AccountHandler) requirePrivilege(c *gin.Context, check func(ctx context.Context, email string) (bool, error)) (*models.Identity, bool) {
	identity := currentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}

	allowed, err := check(c.Request.Context(), identity.Email)
	if errors.Is(err, service.ErrAccountNotFound) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return nil, false
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to check privilege")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check privilege"})
		return nil, false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return nil, false
	}
	return identity, true
}
