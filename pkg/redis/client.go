package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yassinehussein4-cyber/storefront/pkg/config"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
)

// Nil is returned by Get when the key does not exist.
var Nil = redis.Nil

// ErrNotInitialized is returned by every command on a zero or nil Client.
var ErrNotInitialized = errors.New("redis client not initialized")

// Keys under the service namespace. Empty parts are dropped.
const (
	namespace        = "sf"
	spaceIdempotency = "idempotency"
	spaceLock        = "lock"
	spaceCatalog     = "catalog"
)

// commander is the subset of go-redis commands the storefront issues.
type commander interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client is shared by the catalog category cache, the checkout idempotency guard and the
// session sweep lock.
type Client struct {
	cmd  commander
	conn *redis.Client
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// IdempotencyStore is what the checkout replay guard needs.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	Set(context.Context, string, any, time.Duration) error
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Del(context.Context, ...string) error
	IdempotencyKey(scope, id string) string
}

// New dials Redis and fails unless the first PING succeeds.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	conn := redis.NewClient(opts)
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"redis_addr": opts.Addr,
			"redis_db":   opts.DB,
			"pool_size":  opts.PoolSize,
		}), "redis connection established")
	}
	return &Client{cmd: conn, conn: conn}, nil
}

// NewFromCmdable wraps a command surface the caller owns; Close leaves it open.
func NewFromCmdable(cmd commander) *Client {
	return &Client{cmd: cmd}
}

// optionsFromConfig prefers the URL form and fills whatever it leaves unset from the
// discrete settings.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if !cfg.Enabled() {
		return nil, errors.New("redis url or address is required")
	}
	opts := &redis.Options{Addr: strings.TrimSpace(cfg.Address), Password: cfg.Password}
	if url := strings.TrimSpace(cfg.URL); url != "" {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	}
	fillInt(&opts.DB, cfg.DB)
	fillInt(&opts.PoolSize, cfg.PoolSize)
	fillInt(&opts.MinIdleConns, cfg.MinIdleConns)
	fillDuration(&opts.DialTimeout, cfg.DialTimeout)
	fillDuration(&opts.ReadTimeout, cfg.ReadTimeout)
	fillDuration(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func fillInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func fillDuration(dst *time.Duration, v time.Duration) {
	if *dst == 0 {
		*dst = v
	}
}

func (c *Client) ready() (commander, error) {
	if c == nil || c.cmd == nil {
		return nil, ErrNotInitialized
	}
	return c.cmd, nil
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	cmd, err := c.ready()
	if err != nil {
		return err
	}
	return cmd.Set(ctx, key, value, ttl).Err()
}

// Get returns Nil for a missing key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	cmd, err := c.ready()
	if err != nil {
		return "", err
	}
	return cmd.Get(ctx, key).Result()
}

// SetNX reports whether the key was written; false means another writer holds it.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	cmd, err := c.ready()
	if err != nil {
		return false, err
	}
	return cmd.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	cmd, err := c.ready()
	if err != nil {
		return err
	}
	return cmd.Del(ctx, keys...).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	cmd, err := c.ready()
	if err != nil {
		return err
	}
	return cmd.Ping(ctx).Err()
}

// Close only closes connections opened by New.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// IdempotencyKey is sf:idempotency:<scope>:<id>.
func (c *Client) IdempotencyKey(scope, id string) string {
	return joinKey(spaceIdempotency, scope, id)
}

// LockKey is sf:lock:<name>.
func (c *Client) LockKey(name string) string {
	return joinKey(spaceLock, name)
}

// CatalogKey is sf:catalog:<parts...>.
func (c *Client) CatalogKey(parts ...string) string {
	return joinKey(spaceCatalog, parts...)
}

func joinKey(space string, parts ...string) string {
	var b strings.Builder
	b.WriteString(namespace)
	b.WriteByte(':')
	b.WriteString(space)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}
