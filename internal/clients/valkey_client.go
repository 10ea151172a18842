package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/honestreviews/config"
	"github.com/valkey-io/valkey-go"
)

const (
	valkeyOpRetries  = 3
	valkeyRetryDelay = 250 * time.Millisecond
)

// ValkeyClient caches raw Reddit responses. It satisfies ResponseCache.
type ValkeyClient struct {
	Client valkey.Client
	cfg    config.ValkeyConfig
	mu     sync.Mutex
}

func NewValkeyClient(ctx context.Context, cfg config.ValkeyConfig) (*ValkeyClient, error) {
	client, err := connectValkey(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("address", cfg.Address))
	return &ValkeyClient{Client: client, cfg: cfg}, nil
}

func connectValkey(ctx context.Context, cfg config.ValkeyConfig) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func (vc *ValkeyClient) recreateClient(ctx context.Context) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connectValkey(ctx, vc.cfg)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.Client
}

func (vc *ValkeyClient) Get(ctx context.Context, key string) ([]byte, bool) {
	res := vc.doWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Get().Key(key).Build()
	})
	value, err := res.AsBytes()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			slog.Warn("[ValkeyClient] Get failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil, false
	}
	return value, true
}

func (vc *ValkeyClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	res := vc.doWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Set().Key(key).Value(valkey.BinaryString(value)).ExSeconds(int64(ttl.Seconds())).Build()
	})
	if err := res.Error(); err != nil {
		slog.Warn("[ValkeyClient] Set failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// doWithRetry builds a fresh command per attempt; valkey recycles completed
// commands once they are sent.
func (vc *ValkeyClient) doWithRetry(ctx context.Context, build func(valkey.Client) valkey.Completed) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for attempt := 1; attempt <= valkeyOpRetries; attempt++ {
		c := vc.client()
		result = c.Do(ctx, build(c))
		err := result.Error()
		if err == nil || valkey.IsValkeyNil(err) || attempt == valkeyOpRetries {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		if isConnectionError(err) {
			vc.recreateClient(ctx)
		}

		select {
		case <-ctx.Done():
			return result
		case <-time.After(valkeyRetryDelay):
		}
	}
	return result
}

func (vc *ValkeyClient) Close() {
	vc.client().Close()
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
