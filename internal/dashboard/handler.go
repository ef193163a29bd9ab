package dashboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artconnect/internal/interaction"
	"artconnect/internal/review"
	"artconnect/internal/storage"
)

// Handler serves the review dashboard JSON API
type Handler struct {
	svc       *review.Service
	metrics   *Metrics
	highValue float64
	logger    *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc *review.Service, metrics *Metrics, highValue float64, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:       svc,
		metrics:   metrics,
		highValue: highValue,
		logger:    logger,
	}
}

// DecisionRequest is the body of POST /api/v1/decisions.
type DecisionRequest struct {
	InteractionID  string `json:"interaction_id" binding:"required"`
	Action         string `json:"action" binding:"required"`
	FinalReplyText string `json:"final_reply_text"`
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/opportunities", h.ListOpportunities)
		api.GET("/opportunities/:id", h.GetOpportunity)

		api.POST("/decisions", h.CreateDecision)
		api.GET("/decisions", h.ListDecisions)

		api.GET("/analytics", h.GetAnalytics)
	}

	r.GET("/health", h.HealthCheck)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
}

// NewRouter builds the gin engine with CORS and the API routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})
	h.RegisterRoutes(router)
	return router
}

// ListOpportunities returns the batch in score order.
// Query: platform, min_score, limit, high_value=true.
func (h *Handler) ListOpportunities(c *gin.Context) {
	var f review.Filter
	if p := c.Query("platform"); p != "" {
		platform, err := interaction.ParsePlatform(p)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "platform must be Instagram or Twitter"})
			return
		}
		f.Platform = platform
	}
	if s := c.Query("min_score"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_score must be a number within 0..100"})
			return
		}
		f.MinScore = v
	}
	if c.Query("high_value") == "true" && f.MinScore < h.highValue {
		f.MinScore = h.highValue
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		f.Limit = n
	}

	ops := h.svc.Opportunities(f)
	if ops == nil {
		ops = []review.Opportunity{}
	}
	c.JSON(http.StatusOK, gin.H{
		"opportunities": ops,
		"total":         len(ops),
	})
}

// GetOpportunity returns one interaction with its breakdown and suggested reply.
func (h *Handler) GetOpportunity(c *gin.Context) {
	op, err := h.svc.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

// CreateDecision logs a reviewer decision.
func (h *Handler) CreateDecision(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	action, err := storage.ParseAction(req.Action)
	if err != nil {
		h.writeError(c, err)
		return
	}
	e, err := h.svc.Decide(req.InteractionID, action, req.FinalReplyText)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// ListDecisions returns the latest decisions, oldest first.
func (h *Handler) ListDecisions(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	entries, err := h.svc.Decisions(limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if entries == nil {
		entries = []storage.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"decisions": entries,
		"total":     len(entries),
	})
}

// GetAnalytics returns the KPI report and today's decisions.
func (h *Handler) GetAnalytics(c *gin.Context) {
	report, err := h.svc.Report()
	if err != nil {
		h.writeError(c, err)
		return
	}
	daily, err := h.svc.Daily(h.svc.Now().UTC())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report": report,
		"today":  daily,
	})
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"interactions": len(h.svc.Scored()),
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, review.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrInvalidAction), errors.Is(err, storage.ErrEmptyReply), errors.Is(err, storage.ErrMissingID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Dashboard request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
