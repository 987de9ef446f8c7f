package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/shared/server/middleware"
	"assessment-backend/internal/shared/server/respond"
)

type meResponse struct {
	UserID  string `json:"userId"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

// meHandler echoes the identity carried by the bearer token.
func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	respond.JSON(c, http.StatusOK, meResponse{
		UserID:  userID,
		Email:   middleware.UserEmailFromContext(c),
		Name:    middleware.UserNameFromContext(c),
		Picture: middleware.UserPictureFromContext(c),
	})
}
