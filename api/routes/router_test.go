package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yassinehussein4-cyber/storefront/internal/catalog"
	"github.com/yassinehussein4-cyber/storefront/internal/checkout"
	"github.com/yassinehussein4-cyber/storefront/internal/session"
	"github.com/yassinehussein4-cyber/storefront/internal/storefront"
	"github.com/yassinehussein4-cyber/storefront/pkg/config"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]int  `json:"meta"`
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type harness struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, pinger stubPinger) *harness {
	t.Helper()
	cfg := &config.Config{
		App:     config.AppConfig{Env: "dev", CORSOrigins: []string{"http://localhost:3000"}},
		Session: config.SessionConfig{CookieName: "sf_session"},
	}
	store := &catalog.StaticStore{
		Products: []catalog.Product{
			{ID: "p1", Title: "Aero Shades", Price: 79, CategoryID: "sunglasses"},
			{ID: "p2", Title: "IceEdge 155", Price: 399, CategoryID: "snowboards"},
		},
		Categories: []catalog.Category{{ID: "snowboards", Title: "Snowboards"}, {ID: "sunglasses", Title: "Sunglasses"}},
		Profiles:   []catalog.Profile{{ID: "o1", Slug: "owner", Name: "Ada"}},
	}
	svc := storefront.NewService(storefront.ServiceParams{Store: store})
	registry := session.NewRegistry(session.RegistryParams{
		Options: session.Options{
			SearchDebounce: 5 * time.Millisecond,
			ToastTTL:       time.Minute,
			Pricing:        checkout.DefaultPricing(),
		},
	})
	registry.OnCreate(svc.Attach)
	t.Cleanup(func() { _ = registry.Close() })

	handler := NewRouter(cfg, logger.Nop(), pinger, nil, registry, store, svc, nil)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{t: t, server: server, client: &http.Client{Jar: jar}}
}

func (h *harness) do(method, path string, body any) (int, envelope) {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, h.server.URL+path, reader)
	require.NoError(h.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealthRoutes(t *testing.T) {
	h := newHarness(t, stubPinger{})
	status, _ := h.do(http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, status)

	status, env := h.do(http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, status)
	ready := decode[map[string]string](t, env.Data)
	require.Equal(t, "missing", ready["cms"])

	down := newHarness(t, stubPinger{err: errors.New("refused")})
	status, env = down.do(http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "DEPENDENCY_ERROR", env.Error.Code)
}

func TestCatalogRoutes(t *testing.T) {
	h := newHarness(t, stubPinger{})

	status, env := h.do(http.MethodGet, "/api/v1/catalog/products?category=sunglasses&limit=1", nil)
	require.Equal(t, http.StatusOK, status)
	items := decode[[]catalog.Product](t, env.Data)
	require.Len(t, items, 1)
	require.Equal(t, "p1", items[0].ID)
	require.Equal(t, 1, env.Meta["total"])

	status, env = h.do(http.MethodGet, "/api/v1/catalog/products?sort=sideways", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	status, env = h.do(http.MethodGet, "/api/v1/catalog/categories", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, decode[[]catalog.Category](t, env.Data), 2)

	status, _ = h.do(http.MethodGet, "/api/v1/profile/owner", nil)
	require.Equal(t, http.StatusOK, status)
	status, env = h.do(http.MethodGet, "/api/v1/profile/nobody", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestShopperJourney(t *testing.T) {
	h := newHarness(t, stubPinger{})

	status, env := h.do(http.MethodGet, "/api/v1/view", nil)
	require.Equal(t, http.StatusOK, status)
	view := decode[storefront.PageView](t, env.Data)
	require.Len(t, view.Products, 2)
	require.Equal(t, "all", view.Categories[0].ID)

	status, _ = h.do(http.MethodPatch, "/api/v1/view", map[string]any{"changes": map[string]any{"product": "p1"}})
	require.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "p1", "qty": 2})
	require.Equal(t, http.StatusCreated, status)
	cartBody := decode[map[string]any](t, env.Data)
	require.Equal(t, "158.00", cartBody["subtotal"])

	status, env = h.do(http.MethodGet, "/api/v1/view", nil)
	require.Equal(t, http.StatusOK, status)
	view = decode[storefront.PageView](t, env.Data)
	require.Nil(t, view.SelectedProduct, "adding to cart closes the product panel")
	require.Len(t, view.Toasts, 1)
	require.Equal(t, "Added 2 × Aero Shades (€158.00)", view.Toasts[0].Message)

	status, _ = h.do(http.MethodPost, "/api/v1/cart/open", nil)
	require.Equal(t, http.StatusOK, status)
	status, env = h.do(http.MethodPost, "/api/v1/cart/checkout", nil)
	require.Equal(t, http.StatusOK, status)
	view = decode[storefront.PageView](t, env.Data)
	require.False(t, view.State.CartOpen)
	require.True(t, view.State.CheckoutOpen)
	require.NotNil(t, view.Checkout)

	status, env = h.do(http.MethodPost, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, checkout.RequiredFieldsNotice, env.Error.Message)
	require.Contains(t, env.Error.Details, "fields")

	status, _ = h.do(http.MethodPut, "/api/v1/checkout/form", map[string]string{
		"name": "Ada Lovelace", "email": "ada@example.com", "address": "12 Analytical Row", "promo": "save10",
	})
	require.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodPost, "/api/v1/checkout/promo", nil)
	require.Equal(t, http.StatusOK, status)
	promo := decode[map[string]any](t, env.Data)
	require.Equal(t, true, promo["applied"])

	status, env = h.do(http.MethodPost, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusCreated, status)
	placed := decode[struct {
		Order checkout.Order      `json:"order"`
		View  storefront.PageView `json:"view"`
	}](t, env.Data)
	require.Equal(t, "147.20", placed.Order.Summary.Total.StringFixed(2))
	require.True(t, placed.View.State.PlacedOpen)
	require.False(t, placed.View.State.CheckoutOpen)
	require.Empty(t, placed.View.Cart.Lines)
	require.Equal(t, "placed=1", placed.View.Query)

	status, env = h.do(http.MethodPost, "/api/v1/checkout/placed/close", nil)
	require.Equal(t, http.StatusOK, status)
	view = decode[storefront.PageView](t, env.Data)
	require.Empty(t, view.Query)
}

func TestCartLineErrors(t *testing.T) {
	h := newHarness(t, stubPinger{})

	status, env := h.do(http.MethodPost, "/api/v1/cart/items/ghost/increment", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", env.Error.Code)

	status, _ = h.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "missing"})
	require.Equal(t, http.StatusNotFound, status)

	status, env = h.do(http.MethodPost, "/api/v1/cart/checkout", nil)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "STATE_CONFLICT", env.Error.Code)

	status, _ = h.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "p2", "qty": 0})
	require.Equal(t, http.StatusCreated, status)
	status, env = h.do(http.MethodPut, "/api/v1/cart/items/p2", map[string]any{"qty": 2.7})
	require.Equal(t, http.StatusOK, status)
	cartBody := decode[map[string]any](t, env.Data)
	require.EqualValues(t, 2, cartBody["count"])

	status, env = h.do(http.MethodPatch, "/api/v1/view", map[string]any{"changes": map[string]any{" ": "x"}})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	status, _ = h.do(http.MethodPost, "/api/v1/checkout", nil)
	require.Equal(t, http.StatusUnprocessableEntity, status, "submitting with the panel closed is rejected")
}

func TestViewPatchClearsStrayKeys(t *testing.T) {
	h := newHarness(t, stubPinger{})
	status, env := h.do(http.MethodPost, "/api/v1/view/navigate", map[string]any{"query": "?utm=mail&category=sunglasses"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "category=sunglasses&utm=mail", decode[map[string]any](t, env.Data)["query"])

	status, env = h.do(http.MethodPatch, "/api/v1/view", map[string]any{"changes": map[string]any{"utm": nil}})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "category=sunglasses", decode[map[string]any](t, env.Data)["query"])
}

func TestToastDismiss(t *testing.T) {
	h := newHarness(t, stubPinger{})
	status, _ := h.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "p1", "qty": 1})
	require.Equal(t, http.StatusCreated, status)

	status, env := h.do(http.MethodGet, "/api/v1/toasts", nil)
	require.Equal(t, http.StatusOK, status)
	toasts := decode[[]struct {
		ID int64 `json:"id"`
	}](t, env.Data)
	require.Len(t, toasts, 1)

	status, _ = h.do(http.MethodDelete, "/api/v1/toasts/1", nil)
	require.Equal(t, http.StatusNoContent, status)
	status, _ = h.do(http.MethodDelete, "/api/v1/toasts/1", nil)
	require.Equal(t, http.StatusNotFound, status)
}
