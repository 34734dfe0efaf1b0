package practice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitpractice/sit-api/api/types"
	"github.com/sitpractice/sit-api/internal/database"
	"github.com/sitpractice/sit-api/internal/models"
	"github.com/sitpractice/sit-api/internal/services/flows"
	practicesvc "github.com/sitpractice/sit-api/internal/services/practice"
	"github.com/sitpractice/sit-api/internal/services/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*gin.Engine, records.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.AutoMigrate(&models.Sit{}, &models.Checkin{}, &models.Flow{}))

	recordRepo := records.NewRepository(db.DB)
	deps := &types.Dependencies{
		PracticeService: practicesvc.NewService(recordRepo, flows.NewService(flows.NewRepository(db.DB))),
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", "test-user")
	})
	RegisterRoutes(router.Group("/practice"), deps)

	return router, recordRepo
}

func TestGet(t *testing.T) {
	router, recordRepo := setupTestRouter(t)

	sit := &models.Sit{
		UserID:          "test-user",
		OccurredAt:      time.Date(2026, 2, 16, 20, 0, 0, 0, time.UTC),
		DurationSeconds: 1800,
	}
	require.NoError(t, recordRepo.CreateSit(context.Background(), sit))

	t.Run("returns merged records", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET",
			"/practice?start_date=2026-02-16&end_date=2026-02-20&timezone=America/Los_Angeles", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp types.PracticeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, sit.ID, resp.Records[0].Sit.ID)
	})

	t.Run("kind filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/practice?kind=checkins", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var resp types.PracticeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Zero(t, resp.Count)
	})

	t.Run("invalid timezone", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/practice?timezone=Nowhere/Null", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid kind", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/practice?kind=everything", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("start after end", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/practice?start_date=2026-02-20&end_date=2026-02-16", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
