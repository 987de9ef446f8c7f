package identity

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/shared/auth"
	"assessment-backend/internal/shared/server/respond"
)

type devTokenRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// RegisterDevRoutes attaches token minting for local development. Only mount it in dev.
func RegisterDevRoutes(rg *gin.RouterGroup, signer TokenSigner) {
	rg.POST("/token", func(c *gin.Context) {
		var req devTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
			return
		}
		userID := strings.TrimSpace(req.UserID)
		if userID == "" {
			respond.Error(c, http.StatusBadRequest, "validation_error", "userId is required", []map[string]string{
				{"field": "userId", "issue": "required"},
			})
			return
		}
		token, err := signer.Sign(auth.Claims{Sub: userID, Email: req.Email, Name: req.Name})
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"token": token})
	})
}
