// Package redis backs the scan debounce with shared state, so a bounce
// window survives restarts and holds across servers pointed at one database.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fieldtrack/assettrack/internal/core/ports"
)

const connectTimeout = 5 * time.Second

// Config locates the Redis instance the debouncer runs against.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect opens a client and proves it with a ping before handing it out.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = connectTimeout
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: cfg.DB})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// lastScanKey holds the single most recent recorded scan as "<tag>|<millis>".
// One key, not one per tag: only an immediate re-read of the same tag counts
// as a bounce. The TTL is a safety net so a stale value cannot suppress scans
// after a long idle period.
const (
	lastScanKey = "scan:last"
	lastScanTTL = time.Minute
)

// ScanDebouncer suppresses bounced scans, keeping the last-scan slot in
// Redis rather than process memory.
type ScanDebouncer struct {
	client *redis.Client
	window time.Duration
}

// NewScanDebouncer wraps the given Redis client. Scans of the same tag closer
// together than window are reported as bounces.
func NewScanDebouncer(client *redis.Client, window time.Duration) *ScanDebouncer {
	return &ScanDebouncer{client: client, window: window}
}

var _ ports.ScanDebouncer = (*ScanDebouncer)(nil)

// ShouldRecord reports whether the scan is far enough from the last recorded
// one, and when it is, makes it the new last scan.
func (d *ScanDebouncer) ShouldRecord(ctx context.Context, tagID string, at time.Time) (bool, error) {
	val, err := d.client.Get(ctx, lastScanKey).Result()
	switch {
	case err == redis.Nil:
		// no previous scan
	case err != nil:
		return false, fmt.Errorf("debounce get: %w", err)
	default:
		lastTag, lastAt, ok := parseLastScan(val)
		if ok && lastTag == tagID && at.Sub(lastAt) < d.window {
			return false, nil
		}
	}

	value := fmt.Sprintf("%s|%d", tagID, at.UnixMilli())
	if err := d.client.Set(ctx, lastScanKey, value, lastScanTTL).Err(); err != nil {
		return false, fmt.Errorf("debounce set: %w", err)
	}
	return true, nil
}

func parseLastScan(val string) (string, time.Time, bool) {
	tag, millis, ok := strings.Cut(val, "|")
	if !ok {
		return "", time.Time{}, false
	}
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}
	return tag, time.UnixMilli(ms), true
}
