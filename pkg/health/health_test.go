package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChecker_AllHealthy(t *testing.T) {
	c := NewChecker()
	c.Register("store", func(context.Context) error { return nil })
	c.Register("cache", func(context.Context) error { return nil })

	result := c.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", result.Status)
	}
	if result.Details["store"] != "ok" || result.Details["cache"] != "ok" {
		t.Errorf("unexpected details: %v", result.Details)
	}
}

func TestChecker_OneFailing(t *testing.T) {
	c := NewChecker()
	c.Register("store", func(context.Context) error { return nil })
	c.Register("redis", func(context.Context) error { return errors.New("connection refused") })

	result := c.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", result.Status)
	}
	if result.Details["redis"] != "connection refused" {
		t.Errorf("expected redis error detail, got %q", result.Details["redis"])
	}
}

func TestChecker_TimeoutBoundsCheck(t *testing.T) {
	c := NewChecker().WithTimeout(20 * time.Millisecond)
	c.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	result := c.Check(context.Background())
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("check took %s", elapsed)
	}
	if result.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", result.Status)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		check      CheckFunc
		drain      bool
		wantCode   int
		wantStatus Status
	}{
		{name: "healthy", check: func(context.Context) error { return nil }, wantCode: http.StatusOK, wantStatus: StatusHealthy},
		{name: "unhealthy", check: func(context.Context) error { return errors.New("down") }, wantCode: http.StatusServiceUnavailable, wantStatus: StatusUnhealthy},
		{name: "draining", check: func(context.Context) error { return nil }, drain: true, wantCode: http.StatusServiceUnavailable, wantStatus: StatusDraining},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			c.Register("store", tt.check)
			if tt.drain {
				c.Drain()
			}

			rec := httptest.NewRecorder()
			c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var got CheckResult
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, got.Status)
			}
		})
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
