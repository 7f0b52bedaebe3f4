package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ridepool/internal/metrics"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	idempotencyTTL    = 24 * time.Hour
)

// storedResponse is what a completed mutating request leaves behind for replay.
type storedResponse struct {
	Status      int             `json:"status"`
	ContentType string          `json:"content_type,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
}

func (r *storedResponse) replay(c *gin.Context) {
	c.Header(replayedHeader, "true")
	if len(r.Body) == 0 {
		c.AbortWithStatus(r.Status)
		return
	}
	contentType := r.ContentType
	if contentType == "" {
		contentType = gin.MIMEJSON
	}
	c.Data(r.Status, contentType, r.Body)
	c.Abort()
}

type idempotencyStore struct {
	client *redis.Client
}

func idempotencyCacheKey(req *http.Request, key string) string {
	return "idempotency:" + req.Method + ":" + req.URL.Path + ":" + key
}

// load returns nil, nil when nothing is stored under key.
func (s idempotencyStore) load(ctx context.Context, key string) (*storedResponse, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r storedResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s idempotencyStore) save(ctx context.Context, key string, r *storedResponse) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, idempotencyTTL).Err()
}

// bodyRecorder tees the response body so it can be stored after the handler runs.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key on mutating requests, so a retried POST /v1/routes does not
// plan and persist a second trip route. A nil client disables it.
func IdempotencyMiddleware(redisClient *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	if redisClient == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	store := idempotencyStore{client: redisClient}

	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := idempotencyCacheKey(c.Request, key)

		stored, err := store.load(ctx, cacheKey)
		switch {
		case err != nil:
			// Serve the request without the guarantee rather than fail it.
			logger.Warn("idempotency lookup failed", zap.String("idempotency_key", key), zap.Error(err))
		case stored != nil:
			metrics.CacheHit("idempotency")
			stored.replay(c)
			return
		default:
			metrics.CacheMiss("idempotency")
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		// Only successes are recorded; a rejected or busy request may succeed on retry.
		status := rec.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		resp := &storedResponse{
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
		}
		if rec.buf.Len() > 0 {
			resp.Body = rec.buf.Bytes()
		}
		if err := store.save(context.WithoutCancel(ctx), cacheKey, resp); err != nil {
			logger.Warn("idempotency store failed", zap.String("idempotency_key", key), zap.Error(err))
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
