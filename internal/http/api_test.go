package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-ledger/internal/auth"
	"expense-ledger/internal/repository/memory"
	"expense-ledger/internal/service"
	"expense-ledger/internal/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	return newTestRouterWithBackups(t, nil)
}

func newTestRouterWithBackups(t *testing.T, backups service.BackupService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := memory.NewUserRepository()
	expenseRepo := memory.NewExpenseRepository()
	handler := NewHandler(
		service.NewUserService(userRepo),
		service.NewExpenseService(expenseRepo),
		service.NewInsightsService(expenseRepo),
		auth.NewJWTManager("test-secret", time.Hour),
		backups,
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndGetToken(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterLoginFlow(t *testing.T) {
	router := newTestRouter(t)

	token := registerAndGetToken(t, router, "alice@example.com")
	assert.NotEmpty(t, token)

	// Duplicate registration is rejected.
	rec := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"email":    "alice@example.com",
		"password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Login with the original credentials still works.
	rec = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Bad credentials yield one generic message.
	rec = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, rec.Body.String())
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRequiredOnProtectedRoutes(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/expenses", "/api/pie", "/api/insights"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/expenses", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpenseLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndGetToken(t, router, "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/expenses", token, gin.H{
		"amount":      120.0,
		"description": "coffee at the cafe",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Food", created.Category)
	assert.Equal(t, 120.0, created.Amount)

	rec = doJSON(t, router, http.MethodGet, "/api/expenses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	rec = doJSON(t, router, http.MethodDelete, "/api/expenses/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodDelete, "/api/expenses/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpenseRequiresAmount(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndGetToken(t, router, "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/expenses", token, gin.H{
		"description": "no amount",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpensesAreIsolatedBetweenUsers(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := registerAndGetToken(t, router, "alice@example.com")
	bobToken := registerAndGetToken(t, router, "bob@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/expenses", aliceToken, gin.H{
		"amount":      1000.0,
		"description": "monthly rent",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodGet, "/api/expenses", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed)

	// Deleting someone else's expense looks exactly like a missing id.
	rec = doJSON(t, router, http.MethodDelete, "/api/expenses/"+created.ID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}

type listOnlyStorage struct {
	objects []storage.ObjectInfo
}

func (s *listOnlyStorage) UploadSnapshot(ctx context.Context, opts storage.UploadOptions, name string, data []byte) (string, error) {
	return "s3://" + opts.Bucket + "/" + name, nil
}

func (s *listOnlyStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	return s.objects, nil
}

func TestListBackups(t *testing.T) {
	userRepo := memory.NewUserRepository()
	expenseRepo := memory.NewExpenseRepository()
	backups := service.NewBackupService(userRepo, expenseRepo, &listOnlyStorage{
		objects: []storage.ObjectInfo{
			{Key: "ledger-snapshots/ledger-20260801T000000Z.json", Size: 42},
			{Key: "ledger-snapshots/ledger-20260802T000000Z.json", Size: 43},
		},
	}, storage.UploadOptions{Bucket: "b", KeyPrefix: "ledger-snapshots"}, logrus.New())

	router := newTestRouterWithBackups(t, backups)
	token := registerAndGetToken(t, router, "alice@example.com")

	// Backups are private; the listing sits behind the bearer token too.
	rec := doJSON(t, router, http.MethodGet, "/api/backups", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/backups", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []BackupObjectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "ledger-snapshots/ledger-20260801T000000Z.json", listed[0].Key)
	assert.Equal(t, int64(42), listed[0].Size)
}

func TestListBackupsNotConfigured(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndGetToken(t, router, "alice@example.com")

	rec := doJSON(t, router, http.MethodGet, "/api/backups", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"backup storage not configured"}`, rec.Body.String())
}

func TestPieAndInsights(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndGetToken(t, router, "alice@example.com")

	for _, exp := range []gin.H{
		{"amount": 50.0, "description": "dinner at a restaurant"},
		{"amount": 30.0, "description": "coffee"},
		{"amount": 1000.0, "description": "monthly rent"},
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/expenses", token, exp)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/pie", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"Food":80,"Rent":1000}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/insights", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var insights InsightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &insights))
	assert.Equal(t, map[string]float64{"Food": 80, "Rent": 1000}, insights.Totals)
	require.Len(t, insights.Suggestions, 1)
	assert.Contains(t, insights.Suggestions[0], "Rent")
	assert.InDelta(t, 1080.0, insights.AvgMonthly, 1e-9)
	assert.Equal(t, 1102.0, insights.NextMonthPred)
}
