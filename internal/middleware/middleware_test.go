package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewResponseWriter(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()

	// Act
	rw := newResponseWriter(w)

	// Assert
	if rw == nil {
		t.Fatal("newResponseWriter() returned nil")
	}
	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusOK)
	}
	if rw.written {
		t.Error("written should be false initially")
	}
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"OK", http.StatusOK},
		{"Created", http.StatusCreated},
		{"BadRequest", http.StatusBadRequest},
		{"NotFound", http.StatusNotFound},
		{"InternalServerError", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			rw := newResponseWriter(w)

			// Act
			rw.WriteHeader(tt.statusCode)

			// Assert
			if rw.statusCode != tt.statusCode {
				t.Errorf("statusCode = %d, want %d", rw.statusCode, tt.statusCode)
			}
			if !rw.written {
				t.Error("written should be true after WriteHeader")
			}
		})
	}
}

func TestResponseWriter_WriteHeader_OnlyOnce(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	// Act - Write header twice
	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusBadRequest) // Should be ignored

	// Assert
	if rw.statusCode != http.StatusCreated {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusCreated)
	}
}

func TestResponseWriter_Write(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)
	body := []byte("test body")

	// Act
	n, err := rw.Write(body)

	// Assert
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if n != len(body) {
		t.Errorf("Write() returned %d, want %d", n, len(body))
	}
	if !rw.written {
		t.Error("written should be true after Write")
	}
	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want %d (default)", rw.statusCode, http.StatusOK)
	}
}

func TestChain(t *testing.T) {
	// Arrange
	var order []string

	middleware1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-before")
			next.ServeHTTP(w, r)
			order = append(order, "m1-after")
		})
	}

	middleware2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-before")
			next.ServeHTTP(w, r)
			order = append(order, "m2-after")
		})
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	})

	// Act
	chain := Chain(middleware1, middleware2)
	wrapped := chain(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	// Assert
	expected := []string{"m1-before", "m2-before", "handler", "m2-after", "m1-after"}
	if len(order) != len(expected) {
		t.Fatalf("order length = %d, want %d", len(order), len(expected))
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("order[%d] = %s, want %s", i, order[i], v)
		}
	}
}

func TestChain_Empty(t *testing.T) {
	// Arrange
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Act
	chain := Chain()
	wrapped := chain(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	// Assert
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestLogging_CapturesStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"OK", http.StatusOK},
		{"Created", http.StatusCreated},
		{"BadRequest", http.StatusBadRequest},
		{"NotFound", http.StatusNotFound},
		{"InternalServerError", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			logger := zap.NewNop()
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			middleware := Logging(logger)
			wrapped := middleware(handler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rr := httptest.NewRecorder()

			// Act
			wrapped.ServeHTTP(rr, req)

			// Assert
			if rr.Code != tt.statusCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.statusCode)
			}
		})
	}
}

func TestRecovery_RecoversPanic(t *testing.T) {
	// Arrange
	logger := zap.NewNop()
	handler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("test panic")
	})

	middleware := Recovery(logger)
	wrapped := middleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	// Act - Should not panic
	wrapped.ServeHTTP(rr, req)

	// Assert
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(rr.Body.String(), "Internal Server Error") {
		t.Errorf("body = %s, want to contain 'Internal Server Error'", rr.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	// Arrange
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("Request ID should be set in request header")
		}
		w.WriteHeader(http.StatusOK)
	})

	middleware := RequestID()
	wrapped := middleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	// Act
	wrapped.ServeHTTP(rr, req)

	// Assert
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("Request ID should be set in response header")
	}
}

func TestRequestID_ExistingID(t *testing.T) {
	// Arrange
	existingID := "existing-request-id-123"
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(RequestIDHeader); got != existingID {
			t.Errorf("Request ID = %s, want %s", got, existingID)
		}
		w.WriteHeader(http.StatusOK)
	})

	middleware := RequestID()
	wrapped := middleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, existingID)
	rr := httptest.NewRecorder()

	// Act
	wrapped.ServeHTTP(rr, req)

	// Assert
	if got := rr.Header().Get(RequestIDHeader); got != existingID {
		t.Errorf("Response Request ID = %s, want %s", got, existingID)
	}
}

func TestMetrics_DifferentStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"OK", http.StatusOK},
		{"Created", http.StatusCreated},
		{"NotFound", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			middleware := Metrics()
			wrapped := middleware(handler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rr := httptest.NewRecorder()

			// Act
			wrapped.ServeHTTP(rr, req)

			// Assert
			if rr.Code != tt.statusCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.statusCode)
			}
		})
	}
}

func TestMiddlewareChainIntegration(t *testing.T) {
	// Arrange
	logger := zap.NewNop()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("Request ID should be set by middleware")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	chain := Chain(
		Recovery(logger),
		RequestID(),
		Logging(logger),
		Metrics(),
	)
	wrapped := chain(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	// Act
	wrapped.ServeHTTP(rr, req)

	// Assert
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("Response should have Request ID header")
	}
}
