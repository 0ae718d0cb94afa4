package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	testWallet = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testReqID  = "cccccccccccccccccccccccccccccccc"
)

// helper: new Echo with the middleware and a simple route
func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(IdempotencyMiddleware(rdb, ttl))
	e.POST("/v1/lending/:token/deposit", handler)
	e.GET("/v1/lending/:token/yields", handler) // for non-mutating bypass test
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

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func okCreatedHandler(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]any{"ok": true})
}

func validHeaders() map[string]string {
	return map[string]string{
		"Ax-Request-Id":     testReqID,
		"Ax-Request-At":     time.Now().UTC().Format(time.RFC3339),
		"Ax-Wallet-Address": testWallet,
	}
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, "/v1/lending/USDT/yields", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, okCreatedHandler)

	cases := []struct {
		name   string
		mutate func(h map[string]string)
	}{
		{"missing request id", func(h map[string]string) { delete(h, "Ax-Request-Id") }},
		{"invalid request id", func(h map[string]string) { h["Ax-Request-Id"] = "NOT-VALID" }},
		{"invalid request at", func(h map[string]string) { h["Ax-Request-At"] = "not-a-time" }},
		{"skewed request at", func(h map[string]string) {
			h["Ax-Request-At"] = time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)
		}},
		{"missing wallet", func(h map[string]string) { delete(h, "Ax-Wallet-Address") }},
		{"invalid wallet", func(h map[string]string) { h["Ax-Wallet-Address"] = "not-an-address" }},
	}
	for _, tc := range cases {
		h := validHeaders()
		tc.mutate(h)
		rec := doReq(t, e, http.MethodPost, "/v1/lending/USDT/deposit", mkJSONBody(t, map[string]int{"x": 1}), h)
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
	body := mkJSONBody(t, map[string]any{"amount": "1000.00"})

	rec1 := doReq(t, e, http.MethodPost, "/v1/lending/USDT/deposit", body, h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d, body: %s", rec1.Code, rec1.Body.String())
	}

	// Same headers & body: replay stored response without re-running the handler.
	rec2 := doReq(t, e, http.MethodPost, "/v1/lending/USDT/deposit", mkJSONBody(t, map[string]any{"amount": "1000.00"}), h)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	body := []byte(`{"amount":"1"}`)
	key := buildKey(http.MethodPost, "/v1/lending/:token/deposit", testWallet, testReqID)
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash(body),
		RequestID:   testReqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, entry); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, "/v1/lending/USDT/deposit", bytes.NewReader(body), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	body1 := []byte(`{"amount":"1"}`)
	body2 := []byte(`{"amount":"2"}`)

	key := buildKey(http.MethodPost, "/v1/lending/:token/deposit", testWallet, testReqID)
	final := idempEntry{
		InProgress:  false,
		Code:        http.StatusCreated,
		Body:        []byte(`{"ok":true}`),
		BodySHA256:  bodyHash(body1),
		RequestID:   testReqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, 5*time.Minute); err != nil {
		t.Fatalf("seed final failed: %v", err)
	}

	rec := doReq(t, e, http.MethodPost, "/v1/lending/USDT/deposit", bytes.NewReader(body2), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("different body same reqID => want 409, got %d", rec.Code)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	e := setupEcho(rdb, time.Minute, okCreatedHandler)

	rec := doReq(t, e, http.MethodPost, "/v1/lending/USDT/deposit", bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}
