package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"techgear/internal/config"
	"techgear/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(buf *bytes.Buffer) *echo.Echo {
	log := slog.New(slog.NewJSONHandler(buf, nil))
	noAuth := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, handler.ErrorResponse{Error: "unauthorized"})
		}
	}
	return New(config.Config{CORSOrigins: []string{"http://localhost:3000"}}, log, Handlers{
		Auth:         handler.NewAuthHandler(nil, nil, nil),
		Product:      handler.NewProductHandler(nil, nil),
		AdminProduct: handler.NewAdminProductHandler(nil, nil),
		Cart:         handler.NewCartHandler(nil, nil),
		Order:        handler.NewOrderHandler(nil),
		AuthMW:       noAuth,
	})
}

func TestServer_Health(t *testing.T) {
	var buf bytes.Buffer
	e := newTestServer(&buf)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Healthy"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Contains(t, buf.String(), `"msg":"request"`)
}

func TestServer_UnknownRouteIsJSON(t *testing.T) {
	var buf bytes.Buffer
	e := newTestServer(&buf)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Not Found", body.Error)
}

func TestServer_ProtectedRoutesNeedAuth(t *testing.T) {
	var buf bytes.Buffer
	e := newTestServer(&buf)

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/cart"},
		{http.MethodPost, "/cart/items"},
		{http.MethodPut, "/cart/items/1"},
		{http.MethodDelete, "/cart/items/1"},
		{http.MethodPost, "/cart/checkout"},
		{http.MethodGet, "/orders"},
		{http.MethodGet, "/orders/1"},
		{http.MethodGet, "/auth/me"},
		{http.MethodPost, "/admin/products"},
		{http.MethodPut, "/admin/inventory/1"},
		{http.MethodPost, "/admin/categories"},
		{http.MethodPost, "/admin/brands"},
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(r.method, r.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", r.method, r.path)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	e := newTestServer(&buf)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, e, addr, time.Second, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RequestContextHasDeadline(t *testing.T) {
	log := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	e := New(config.Config{RequestTimeout: 2 * time.Second}, log, Handlers{
		Auth:         handler.NewAuthHandler(nil, nil, nil),
		Product:      handler.NewProductHandler(nil, nil),
		AdminProduct: handler.NewAdminProductHandler(nil, nil),
		Cart:         handler.NewCartHandler(nil, nil),
		Order:        handler.NewOrderHandler(nil),
		AuthMW:       func(next echo.HandlerFunc) echo.HandlerFunc { return next },
	})
	e.GET("/deadline", func(c echo.Context) error {
		dl, ok := c.Request().Context().Deadline()
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		if time.Until(dl) > 2*time.Second {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deadline", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 2*time.Second, e.Server.ReadTimeout)
	assert.Equal(t, readHeaderTimeout, e.Server.ReadHeaderTimeout)
}
