package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/sproutie/sproutie-server/internal/config"
)

// The catalog proxy endpoints are read-heavy and the upstream enforces
// its own rate limit, so successful browse responses are cached briefly
// in Redis. Only 200 responses are stored; the payload is
// [4 bytes content-type length][content-type][body].

// captureWriter tees the response body into a buffer while forwarding
// it to the client, up to a byte limit.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size+int64(len(b)) <= cw.limit {
		cw.buf.Write(b)
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

func cacheKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

func encodeEntry(contentType string, body []byte) []byte {
	out := make([]byte, 4+len(contentType)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(contentType)))
	copy(out[4:], contentType)
	copy(out[4+len(contentType):], body)
	return out
}

func decodeEntry(bs []byte) (contentType string, body []byte, ok bool) {
	if len(bs) < 4 {
		return "", nil, false
	}
	n := int(binary.BigEndian.Uint32(bs[0:4]))
	if n < 0 || 4+n > len(bs) {
		return "", nil, false
	}
	return string(bs[4 : 4+n]), bs[4+n:], true
}

// NewResponseCache returns a caching middleware for the configured
// methods. It degrades to pass-through when disabled or when no Redis
// client is available.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			key := cacheKey(cfg.Prefix, c)
			ctx := c.Request().Context()
			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if ct, body, ok := decodeEntry(bs); ok {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(http.StatusOK, ct, body)
				}
			}

			cw := &captureWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(cfg.MaxBodyBytes),
			}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && (cw.limit <= 0 || cw.size <= cw.limit) {
				ct := c.Response().Header().Get(echo.HeaderContentType)
				// Write with a background context: the request context may
				// already be done once the response has been sent.
				_ = rdb.SetEx(context.Background(), key, encodeEntry(ct, cw.buf.Bytes()), cfg.TTL).Err()
			}
			return nil
		}
	}
}
