package flows

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
	"github.com/sitpractice/sit-api/internal/database"
	"github.com/sitpractice/sit-api/internal/models"
	flowsvc "github.com/sitpractice/sit-api/internal/services/flows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*gin.Engine, flowsvc.FlowService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.AutoMigrate(&models.Flow{}))

	service := flowsvc.NewService(flowsvc.NewRepository(db.DB))
	deps := &types.Dependencies{FlowService: service}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", "test-user")
	})
	RegisterRoutes(router.Group("/flows"), deps)

	return router, service
}

func TestPost(t *testing.T) {
	router, _ := setupTestRouter(t)

	t.Run("creates a flow", func(t *testing.T) {
		body := `{"name":"Evening review","steps":[{"id":1,"prompt":"How was today?"}]}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/flows", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var flow models.Flow
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flow))
		assert.NotEmpty(t, flow.ID)
		assert.Equal(t, "test-user", flow.UserID)
		assert.Equal(t, models.FlowVisibilityPrivate, flow.Visibility)
	})

	t.Run("rejects missing steps", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/flows", strings.NewReader(`{"name":"Empty"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// A first-time listing seeds the starter flow.
func TestGetAll(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/flows", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.FlowsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "In the View?", resp.Flows[0].Name)

	// Listing again does not seed another
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/flows", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestGetByID(t *testing.T) {
	router, service := setupTestRouter(t)
	ctx := context.Background()

	own := &models.Flow{
		UserID:     "test-user",
		Name:       "Mine",
		Steps:      models.FlowSteps{{"id": 1}},
		Visibility: models.FlowVisibilityPrivate,
	}
	require.NoError(t, service.CreateFlow(ctx, own))

	foreignPrivate := &models.Flow{
		UserID:     "someone-else",
		Name:       "Theirs",
		Steps:      models.FlowSteps{{"id": 1}},
		Visibility: models.FlowVisibilityPrivate,
	}
	require.NoError(t, service.CreateFlow(ctx, foreignPrivate))

	foreignPublic := &models.Flow{
		UserID:     "someone-else",
		Name:       "Shared",
		Steps:      models.FlowSteps{{"id": 1}},
		Visibility: models.FlowVisibilityPublic,
	}
	require.NoError(t, service.CreateFlow(ctx, foreignPublic))

	t.Run("own flow", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/flows/"+own.ID, nil))
		require.Equal(t, http.StatusOK, w.Code)

		var flow models.Flow
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flow))
		assert.Equal(t, "Mine", flow.Name)
	})

	t.Run("foreign private flow is hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/flows/"+foreignPrivate.ID, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("foreign public flow is visible", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/flows/"+foreignPublic.ID, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/flows/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
