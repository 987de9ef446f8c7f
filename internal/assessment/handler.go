package assessment

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"assessment-backend/internal/catalog"
	"assessment-backend/internal/recommendations"
	"assessment-backend/internal/shared/server/middleware"
	"assessment-backend/internal/shared/server/respond"
)

const (
	maxAnswerBodyBytes = 1 << 20
	defaultListLimit   = 20
	maxListLimit       = 100
)

// Handler wires HTTP handlers to the assessment service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches assessment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/assessment")
	g.GET("/questions", h.getQuestions)
	g.POST("/submit", h.submit)
	g.GET("/recommendations", h.getRecommendations)
	g.GET("/submissions", h.listSubmissions)
}

func (h *Handler) getQuestions(c *gin.Context) {
	cat, err := h.Svc.Questions(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "catalog_unavailable", "assessment questions are unavailable", nil)
		return
	}
	respond.JSON(c, http.StatusOK, cat)
}

func (h *Handler) submit(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxAnswerBodyBytes))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "request body could not be read", nil)
		return
	}

	res, err := h.Svc.Submit(c.Request.Context(), userID, body)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid answers", verr.Issues)
		case errors.Is(err, catalog.ErrUnavailable):
			respond.Error(c, http.StatusInternalServerError, "catalog_unavailable", "assessment questions are unavailable", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process submission", nil)
		}
		return
	}
	middleware.SetSubmission(c, res.SubmissionID, res.Status)

	respond.JSON(c, http.StatusOK, gin.H{
		"submissionId":    res.SubmissionID,
		"status":          res.Status,
		"recommendations": res.Recommendations,
	})
}

func (h *Handler) getRecommendations(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	sub, err := h.Svc.Latest(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no assessment submitted yet", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch recommendations", nil)
		}
		return
	}
	middleware.SetSubmission(c, sub.ID, sub.Status)

	if c.Query("format") == "text" {
		var text *string
		if sub.Recommendations != nil {
			formatted := recommendations.Format(*sub.Recommendations)
			text = &formatted
		}
		respond.JSON(c, http.StatusOK, gin.H{"recommendations": text})
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"submissionId":    sub.ID,
		"status":          sub.Status,
		"createdAt":       sub.CreatedAt,
		"recommendations": sub.Recommendations,
	})
}

func (h *Handler) listSubmissions(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := defaultListLimit
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	subs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list submissions", nil)
		return
	}

	resp := make([]gin.H, 0, len(subs))
	for _, s := range subs {
		item := gin.H{
			"submissionId": s.ID,
			"status":       s.Status,
			"createdAt":    s.CreatedAt,
		}
		if s.CompletedAt != nil {
			item["completedAt"] = s.CompletedAt
		}
		if s.Recommendations != nil {
			item["overallScore"] = s.Recommendations.OverallScore
			item["summary"] = s.Recommendations.Summary
		}
		resp = append(resp, item)
	}
	respond.JSON(c, http.StatusOK, resp)
}
