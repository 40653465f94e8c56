package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/kgview/pkg/errors"
)

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantCode  errors.Code
		retryable bool
	}{
		{200, "", false},
		{204, "", false},
		{404, errors.ErrCodeNotFound, false},
		{401, errors.ErrCodeUnauthorized, false},
		{403, errors.ErrCodeUnauthorized, false},
		{429, errors.ErrCodeNetwork, true},
		{503, errors.ErrCodeNetwork, true},
		{400, errors.ErrCodeUpstream, false},
	}
	for _, tt := range tests {
		err := CheckStatus(tt.code)
		if got := errors.GetCode(err); got != tt.wantCode {
			t.Errorf("CheckStatus(%d) code = %q, want %q", tt.code, got, tt.wantCode)
		}
		if IsRetryable(err) != tt.retryable {
			t.Errorf("CheckStatus(%d) retryable = %v, want %v", tt.code, !tt.retryable, tt.retryable)
		}
	}
}

func TestClientGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"msg":"ok"}`))
	}))
	defer srv.Close()

	var out struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	c := NewClient(WithHeader("Authorization", "Bearer tok"))
	if err := c.GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON() failed: %v", err)
	}
	if out.Msg != "ok" {
		t.Errorf("got msg %q", out.Msg)
	}

	err := NewClient().GetJSON(context.Background(), srv.URL, &out)
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("missing token: got %v, want UNAUTHORIZED", err)
	}
}

func TestClientGetJSONBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	var out map[string]any
	err := NewClient().GetJSON(context.Background(), srv.URL, &out)
	if !errors.Is(err, errors.ErrCodeUpstream) {
		t.Errorf("got %v, want UPSTREAM_ERROR", err)
	}
}

func TestClientCachedRetriesAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"total":7}`))
	}))
	defer srv.Close()

	rc, _ := NewResponseCache(t.TempDir(), time.Hour)
	c := NewClient(WithCache(rc), WithRetry(3, time.Millisecond))
	ctx := context.Background()

	var out struct{ Total int }
	fetch := func() error { return c.GetJSON(ctx, srv.URL, &out) }
	if err := c.Cached(ctx, "k", false, &out, fetch); err != nil {
		t.Fatalf("Cached() failed: %v", err)
	}
	if out.Total != 7 || hits.Load() != 2 {
		t.Fatalf("got total=%d hits=%d, want 7 and 2", out.Total, hits.Load())
	}

	out.Total = 0
	if err := c.Cached(ctx, "k", false, &out, fetch); err != nil {
		t.Fatalf("Cached() hit failed: %v", err)
	}
	if out.Total != 7 || hits.Load() != 2 {
		t.Errorf("second call should be served from cache, hits=%d", hits.Load())
	}

	if err := c.Cached(ctx, "k", true, &out, fetch); err != nil {
		t.Fatalf("Cached() refresh failed: %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("refresh should bypass cache, hits=%d", hits.Load())
	}
}

func TestClientNetworkErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var out any
	err := NewClient().GetJSON(context.Background(), url, &out)
	if !IsRetryable(err) || !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("got %v, want retryable NETWORK_ERROR", err)
	}
}
