package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(Idempotency(rdb, ttl, logrus.New()))
	e.POST("/offers", handler)
	e.GET("/offers", handler)
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func okCreatedHandler(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]any{"ok": true})
}

func validHeaders() map[string]string {
	return map[string]string{
		"X-Request-Id": strings.Repeat("a", 32),
		"X-Request-At": time.Now().UTC().Format(time.RFC3339),
		"X-Actor-Id":   strings.Repeat("b", 32),
	}
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, "/offers", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_HeaderValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, okCreatedHandler)

	cases := []struct {
		name   string
		mutate func(h map[string]string)
	}{
		{"missing request id", func(h map[string]string) { delete(h, "X-Request-Id") }},
		{"invalid request id", func(h map[string]string) { h["X-Request-Id"] = "NOT-VALID" }},
		{"invalid request at", func(h map[string]string) { h["X-Request-At"] = "not-a-time" }},
		{"skewed request at", func(h map[string]string) {
			h["X-Request-At"] = time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)
		}},
		{"missing actor id", func(h map[string]string) { delete(h, "X-Actor-Id") }},
		{"invalid actor id", func(h map[string]string) { h["X-Actor-Id"] = "not32hex" }},
	}
	for _, tc := range cases {
		h := validHeaders()
		tc.mutate(h)
		rec := doReq(t, e, http.MethodPost, "/offers", mkJSONBody(t, map[string]int{"x": 1}), h)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s => want 400, got %d", tc.name, rec.Code)
		}
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	h := validHeaders()
	body := map[string]any{"offered_amount": "10.5"}

	rec1 := doReq(t, e, http.MethodPost, "/offers", mkJSONBody(t, body), h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d, body: %s", rec1.Code, rec1.Body.String())
	}

	// Same headers & body: replay the stored response byte-for-byte.
	rec2 := doReq(t, e, http.MethodPost, "/offers", mkJSONBody(t, body), h)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
}

func Test_Conflict_On_BodyMismatch(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	h := validHeaders()
	rec1 := doReq(t, e, http.MethodPost, "/offers", mkJSONBody(t, map[string]int{"x": 1}), h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d", rec1.Code)
	}
	rec2 := doReq(t, e, http.MethodPost, "/offers", mkJSONBody(t, map[string]int{"x": 2}), h)
	if rec2.Code != http.StatusConflict {
		t.Fatalf("reused id with different body => want 409, got %d", rec2.Code)
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	h := validHeaders()
	body := []byte(`{"x":1}`)

	// Seed a provisional in-progress entry so SetNX fails and no stored
	// response exists yet.
	key := buildKey(http.MethodPost, "/offers", h["X-Actor-Id"], h["X-Request-Id"])
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash(body),
		RequestID:   h["X-Request-Id"],
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	payload, _ := json.Marshal(entry)
	if err := rdb.Set(context.Background(), key, payload, provisionalLockTTL).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doReq(t, e, http.MethodPost, "/offers", bytes.NewReader(body), h)
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d, body: %s", rec.Code, rec.Body.String())
	}
}
