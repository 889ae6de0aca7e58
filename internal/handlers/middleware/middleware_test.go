package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/optica-pos/internal/core/domain"
	"github.com/ammerola/optica-pos/internal/handlers/middleware"
	"github.com/ammerola/optica-pos/internal/pkg/logger"
	"github.com/ammerola/optica-pos/internal/pkg/metrics"
	"github.com/ammerola/optica-pos/test/helpers"
	"github.com/ammerola/optica-pos/test/mocks"
)

func TestRequestID(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	wrapped := middleware.RequestID(handler)

	tests := []struct {
		name              string
		existingRequestID string
		validate          func(*testing.T, string)
	}{
		{
			name: "generates_new_request_id",
			validate: func(t *testing.T, id string) {
				assert.Len(t, id, 36)
			},
		},
		{
			name:              "uses_existing_request_id",
			existingRequestID: "existing-id-123",
			validate: func(t *testing.T, id string) {
				assert.Equal(t, "existing-id-123", id)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.existingRequestID != "" {
				req.Header.Set("X-Request-ID", tt.existingRequestID)
			}
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			id := w.Header().Get("X-Request-ID")
			assert.Equal(t, id, seen)
			tt.validate(t, id)
		})
	}
}

func TestLogger(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("test response"))
	})

	wrapped := middleware.Logger(helpers.TestLogger())(handler)

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "test response", w.Body.String())
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "recovers_from_panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("test panic")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "Internal Server Error",
		},
		{
			name: "passes_through_normal_response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("normal response"))
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "normal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := middleware.Recovery(helpers.TestLogger())(tt.handler)
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestRateLimit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := middleware.RateLimit(2, time.Hour)(handler)

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = ip + ":5000"
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"), "limits are per client")

	unlimited := middleware.RateLimit(0, time.Minute)(handler)
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		unlimited.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := middleware.CORS([]string{"https://pos.optica.local"})(handler)

	t.Run("allowed_origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://pos.optica.local")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		assert.Equal(t, "https://pos.optica.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
	})

	t.Run("other_origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/sales", nil)
		req.Header.Set("Origin", "https://pos.optica.local")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestSecureHeaders(t *testing.T) {
	wrapped := middleware.SecureHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/sales/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	wrapped := middleware.Metrics(m)(mux)

	for _, path := range []string{"/api/v1/sales/1", "/api/v1/sales/2", "/nope"} {
		wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "GET /api/v1/sales/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestAuthenticate(t *testing.T) {
	actor := &domain.Actor{ID: 4, Name: "Caja", Role: domain.RoleEmployee}

	tests := []struct {
		name       string
		header     string
		setup      func(*mocks.MockAuthService)
		wantStatus int
		wantActor  bool
	}{
		{
			name:       "no_header",
			setup:      func(m *mocks.MockAuthService) {},
			wantStatus: http.StatusOK,
		},
		{
			name:   "valid_token",
			header: "Bearer tok-1",
			setup: func(m *mocks.MockAuthService) {
				m.EXPECT().Authenticate(gomock.Any(), "tok-1").Return(actor, nil)
			},
			wantStatus: http.StatusOK,
			wantActor:  true,
		},
		{
			name:   "lowercase_scheme",
			header: "bearer tok-1",
			setup: func(m *mocks.MockAuthService) {
				m.EXPECT().Authenticate(gomock.Any(), "tok-1").Return(actor, nil)
			},
			wantStatus: http.StatusOK,
			wantActor:  true,
		},
		{
			name:   "expired_token",
			header: "Bearer old",
			setup: func(m *mocks.MockAuthService) {
				m.EXPECT().Authenticate(gomock.Any(), "old").Return(nil, domain.ErrUnauthorized)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "session_store_down",
			header: "Bearer tok-1",
			setup: func(m *mocks.MockAuthService) {
				m.EXPECT().Authenticate(gomock.Any(), "tok-1").Return(nil, errors.New("redis: connection refused"))
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			auth := mocks.NewMockAuthService(ctrl)
			tt.setup(auth)

			var gotActor bool
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				a, ok := middleware.ActorFrom(r.Context())
				gotActor = ok
				if ok {
					assert.Equal(t, *actor, a)
				}
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			middleware.Authenticate(auth, helpers.TestLogger())(handler).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantActor, gotActor)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	guard := middleware.RequireRoles(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(actor *domain.Actor) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
		if actor != nil {
			req = req.WithContext(middleware.WithActor(req.Context(), *actor))
		}
		w := httptest.NewRecorder()
		guard.ServeHTTP(w, req)
		return w
	}

	t.Run("anonymous", func(t *testing.T) {
		w := serve(nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"No autenticado"}`, w.Body.String())
	})

	t.Run("wrong_role", func(t *testing.T) {
		w := serve(&domain.Actor{ID: 2, Role: domain.RoleOptica})
		require.Equal(t, http.StatusForbidden, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "No autorizado", body["error"])
		assert.Equal(t, "optica", body["role"])
		assert.Equal(t, []interface{}{"admin"}, body["allowed"])
	})

	t.Run("allowed", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(&domain.Actor{ID: 1, Role: domain.RoleAdmin}).Code)
	})
}
