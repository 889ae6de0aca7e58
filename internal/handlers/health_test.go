package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/optica-pos/internal/handlers"
	"github.com/ammerola/optica-pos/internal/pkg/config"
	"github.com/ammerola/optica-pos/test/helpers"
	"github.com/ammerola/optica-pos/test/mocks"
)

type fakeInspector struct {
	queues []string
	err    error
}

func (f *fakeInspector) Queues() ([]string, error) {
	return f.queues, f.err
}

func (f *fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return &asynq.QueueInfo{Queue: queue, Size: 3, Pending: 2, Active: 1}, nil
}

func TestHealthHandler(t *testing.T) {
	app := config.AppConfig{Name: "optica-pos", Environment: "test", Version: "1.2.3"}

	t.Run("healthy", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		db := mocks.NewMockDatabase(ctrl)
		db.EXPECT().Ping(gomock.Any()).Return(nil)
		db.EXPECT().Health(gomock.Any()).Return(map[string]interface{}{"total_conns": 4})
		rds := helpers.SetupTestRedis(t)

		h := handlers.NewHealthHandler(db, rds.Client, &fakeInspector{queues: []string{"default"}}, app, helpers.TestLogger())
		w := httptest.NewRecorder()
		h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body handlers.HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "1.2.3", body.Version)
		assert.Equal(t, "healthy", body.Services["database"].Status)
		assert.Equal(t, "healthy", body.Services["redis"].Status)
		assert.Contains(t, body.Services["asynq"].Details, "queues")
	})

	t.Run("degraded when the database is down", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		db := mocks.NewMockDatabase(ctrl)
		db.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
		rds := helpers.SetupTestRedis(t)

		h := handlers.NewHealthHandler(db, rds.Client, nil, app, helpers.TestLogger())
		w := httptest.NewRecorder()
		h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		var body handlers.HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "connection refused", body.Services["database"].Message)
		assert.NotContains(t, body.Services, "asynq")
	})
}

func TestHealthHandler_Readiness(t *testing.T) {
	app := config.AppConfig{Environment: "test"}

	tests := []struct {
		name       string
		dbErr      error
		stopRedis  bool
		queueErr   error
		wantStatus int
		wantReady  map[string]string
	}{
		{
			name:       "all ready",
			wantStatus: http.StatusOK,
			wantReady:  map[string]string{"database": "ready", "redis": "ready", "asynq": "ready"},
		},
		{
			name:       "redis down",
			stopRedis:  true,
			wantStatus: http.StatusServiceUnavailable,
			wantReady:  map[string]string{"database": "ready", "redis": "not ready", "asynq": "ready"},
		},
		{
			name:       "queue inspector failing",
			queueErr:   errors.New("NOAUTH"),
			wantStatus: http.StatusServiceUnavailable,
			wantReady:  map[string]string{"database": "ready", "redis": "ready", "asynq": "not ready"},
		},
		{
			name:       "database down",
			dbErr:      errors.New("timeout"),
			wantStatus: http.StatusServiceUnavailable,
			wantReady:  map[string]string{"database": "not ready", "redis": "ready", "asynq": "ready"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			db := mocks.NewMockDatabase(ctrl)
			db.EXPECT().Ping(gomock.Any()).Return(tt.dbErr)
			rds := helpers.SetupTestRedis(t)
			if tt.stopRedis {
				rds.Server.Close()
			}

			h := handlers.NewHealthHandler(db, rds.Client, &fakeInspector{err: tt.queueErr}, app, helpers.TestLogger())
			w := httptest.NewRecorder()
			h.Readiness(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			require.Equal(t, tt.wantStatus, w.Code)
			var body struct {
				Ready   bool              `json:"ready"`
				Details map[string]string `json:"details"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus == http.StatusOK, body.Ready)
			assert.Equal(t, tt.wantReady, body.Details)
		})
	}
}
