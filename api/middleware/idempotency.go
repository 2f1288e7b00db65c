package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yassinehussein4-cyber/storefront/api/responses"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
	pkgredis "github.com/yassinehussein4-cyber/storefront/pkg/redis"
)

const (
	idempotencyHeader      = "Idempotency-Key"
	checkoutIdempotencyTTL = 24 * time.Hour
	maxIdempotencyKeyLen   = 128
)

// idempotentRoutes maps "METHOD path" to how long a completed response is replayed.
var idempotentRoutes = map[string]time.Duration{
	http.MethodPost + " /api/v1/checkout": checkoutIdempotencyTTL,
}

type recordState string

const (
	statePending  recordState = "pending"
	stateComplete recordState = "complete"
)

// idempotencyRecord is stored as "pending" while the handler runs and replaced by the captured
// response once it succeeds.
type idempotencyRecord struct {
	State       recordState `json:"state"`
	RequestHash string      `json:"request_hash"`
	Status      int         `json:"status,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
	Body        string      `json:"body,omitempty"`
}

// Idempotency makes checkout submission safe to retry: a repeated Idempotency-Key replays the
// stored response, and a duplicate that arrives while the first is still running is refused.
// Requests without the header, and rejected responses, are never stored.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := routeTTL(r.Method, routePattern(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(clientKey) > maxIdempotencyKeyLen {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key too long").
					WithDetails(map[string]int{"max_length": maxIdempotencyKeyLen}))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			guard := &idempotencyGuard{
				store: store,
				logg:  logg,
				key:   store.IdempotencyKey(buildScope(r), clientKey),
				hash:  hashBody(body),
				ttl:   ttl,
			}
			claimed, existing, err := guard.claim(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !claimed {
				guard.answerExisting(w, r, existing)
				return
			}
			guard.run(w, r, next)
		})
	}
}

type idempotencyGuard struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
	key   string
	hash  string
	ttl   time.Duration
}

// claim writes the pending marker. When the key is taken it returns the stored record instead;
// a record that expired between the two calls is claimed again once.
func (g *idempotencyGuard) claim(ctx context.Context) (bool, *idempotencyRecord, error) {
	pending, err := json.Marshal(idempotencyRecord{State: statePending, RequestHash: g.hash})
	if err != nil {
		return false, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency marker")
	}
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := g.store.SetNX(ctx, g.key, string(pending), g.ttl)
		if err != nil {
			return false, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key")
		}
		if ok {
			return true, nil, nil
		}
		stored, err := g.store.Get(ctx, g.key)
		if errors.Is(err, pkgredis.Nil) {
			continue
		}
		if err != nil {
			return false, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
		}
		var record idempotencyRecord
		if err := json.Unmarshal([]byte(stored), &record); err != nil {
			return false, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
		}
		return false, &record, nil
	}
	return false, nil, pkgerrors.New(pkgerrors.CodeConflict, "idempotency key is changing; retry")
}

func (g *idempotencyGuard) answerExisting(w http.ResponseWriter, r *http.Request, record *idempotencyRecord) {
	switch {
	case record.RequestHash != g.hash:
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case record.State != stateComplete:
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.New(pkgerrors.CodeConflict, "a request with this idempotency key is still in progress"))
	default:
		if record.ContentType != "" {
			w.Header().Set("Content-Type", record.ContentType)
		}
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(record.Status)
		if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
			_, _ = w.Write(decoded)
		}
	}
}

// run executes the handler under the pending marker. Rejections and panics release the key so
// the shopper can fix the form and retry with it.
func (g *idempotencyGuard) run(w http.ResponseWriter, r *http.Request, next http.Handler) {
	capture := &responseCapture{ResponseWriter: w}
	completed := false
	defer func() {
		if !completed {
			g.release(r.Context())
		}
	}()

	next.ServeHTTP(capture, r)

	status := capture.statusOrOK()
	if status >= http.StatusBadRequest {
		return
	}
	payload, err := json.Marshal(idempotencyRecord{
		State:       stateComplete,
		RequestHash: g.hash,
		Status:      status,
		ContentType: capture.Header().Get("Content-Type"),
		Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
	})
	if err != nil {
		g.logError(r.Context(), "encode idempotency record", err)
		return
	}
	if err := g.store.Set(r.Context(), g.key, string(payload), g.ttl); err != nil {
		g.logError(r.Context(), "persist idempotency record", err)
		return
	}
	completed = true
}

func (g *idempotencyGuard) release(ctx context.Context) {
	// the request context may already be canceled
	if err := g.store.Del(context.WithoutCancel(ctx), g.key); err != nil {
		g.logError(ctx, "release idempotency key", err)
	}
}

func (g *idempotencyGuard) logError(ctx context.Context, msg string, err error) {
	if g.logg != nil {
		g.logg.Error(ctx, msg, err)
	}
}

// buildScope keeps keys from different sessions apart.
func buildScope(r *http.Request) string {
	return strings.Join([]string{SessionIDFromContext(r.Context()), r.Method, r.URL.Path}, "|")
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// routePattern prefers the matched chi pattern; group middleware only sees a partial "/*"
// pattern, so the request path is used then.
func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" && !strings.HasSuffix(pattern, "*") {
			return strings.TrimSuffix(pattern, "/")
		}
	}
	return strings.TrimSuffix(r.URL.Path, "/")
}

func routeTTL(method, pattern string) (time.Duration, bool) {
	if pattern == "" {
		return 0, false
	}
	ttl, ok := idempotentRoutes[method+" "+pattern]
	return ttl, ok
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
