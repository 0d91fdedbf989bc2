package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"expense-ledger/internal/auth"
	"expense-ledger/internal/domain"
	"expense-ledger/internal/service"
	"expense-ledger/internal/storage"
)

const claimsContextKey = "authClaims"

// errMessageInternal is the generic message for 500 responses. Internal
// detail never crosses the API boundary.
const errMessageInternal = "internal error"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	expenses service.ExpenseService
	insights service.InsightsService
	tokens   auth.TokenManager
	backups  service.BackupService // nil when no backup bucket is configured
}

func NewHandler(
	users service.UserService,
	expenses service.ExpenseService,
	insights service.InsightsService,
	tokens auth.TokenManager,
	backups service.BackupService,
) *Handler {
	return &Handler{
		users:    users,
		expenses: expenses,
		insights: insights,
		tokens:   tokens,
		backups:  backups,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authed := api.Group("", h.requireAuth())
		{
			authed.POST("/expenses", h.createExpense)
			authed.GET("/expenses", h.listExpenses)
			authed.DELETE("/expenses/:id", h.deleteExpense)
			authed.GET("/pie", h.pie)
			authed.GET("/insights", h.getInsights)
			authed.GET("/backups", h.listBackups)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requireAuth verifies the bearer token and places the resolved claims in the
// request context; every expense and insights route sits behind it.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, err := h.tokens.Verify(strings.TrimSpace(header[len(prefix):]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

func authClaims(c *gin.Context) auth.Claims {
	claims, _ := c.MustGet(claimsContextKey).(auth.Claims)
	return claims
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": errMessageInternal})
		}
		return
	}

	h.respondWithToken(c, user)
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMessageInternal})
		return
	}

	h.respondWithToken(c, user)
}

func (h *Handler) respondWithToken(c *gin.Context, user *domain.User) {
	token, err := h.tokens.Issue(auth.Claims{UserID: user.ID, Email: user.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMessageInternal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type createExpenseRequest struct {
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
}

func (h *Handler) createExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	claims := authClaims(c)
	expense, err := h.expenses.Create(c.Request.Context(), claims.UserID, req.Amount, req.Description, req.Date)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMessageInternal})
		return
	}

	c.JSON(http.StatusOK, expenseToResponse(*expense))
}

func (h *Handler) listExpenses(c *gin.Context) {
	claims := authClaims(c)
	expenses, err := h.expenses.List(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMessageInternal})
		return
	}

	resp := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		resp[i] = expenseToResponse(expenses[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteExpense(c *gin.Context) {
	claims := authClaims(c)
	if err := h.expenses.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrExpenseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMessageInternal})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) pie(c *gin.Context) {
	claims := authClaims(c)
	totals, err := h.insights.Pie(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMessageInternal})
		return
	}

	c.JSON(http.StatusOK, totals)
}

func (h *Handler) getInsights(c *gin.Context) {
	claims := authClaims(c)
	insights, err := h.insights.Insights(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMessageInternal})
		return
	}

	c.JSON(http.StatusOK, InsightsResponse{
		Totals:        insights.Totals,
		Suggestions:   insights.Suggestions,
		NextMonthPred: insights.NextMonthPred,
		AvgMonthly:    insights.AvgMonthly,
	})
}

func (h *Handler) listBackups(c *gin.Context) {
	if h.backups == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "backup storage not configured"})
		return
	}

	objects, err := h.backups.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMessageInternal})
		return
	}

	resp := make([]BackupObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

type ExpenseResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
}

type InsightsResponse struct {
	Totals        map[string]float64 `json:"totals"`
	Suggestions   []string           `json:"suggestions"`
	NextMonthPred float64            `json:"nextMonthPred"`
	AvgMonthly    float64            `json:"avgMonthly"`
}

type BackupObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func objectToResponse(obj storage.ObjectInfo) BackupObjectResponse {
	resp := BackupObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

func expenseToResponse(expense domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          expense.ID,
		UserID:      expense.UserID,
		Amount:      expense.Amount,
		Description: expense.Description,
		Date:        expense.Date.Format(time.RFC3339),
		Category:    expense.Category,
	}
}
