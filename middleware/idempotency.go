package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// provisionalLockTTL bounds how long an in-flight request holds its slot if
// the handler never finishes.
const provisionalLockTTL = 60 * time.Second

type idempotencyEntry struct {
	InProgress bool      `json:"in_progress"`
	Code       int       `json:"code"`
	Body       []byte    `json:"body"`
	BodySHA256 string    `json:"body_sha256"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewIdempotencyMiddleware replays the stored response when a mutating
// request is retried with the same X-Idempotency-Key and body. Requests
// without the header pass through untouched.
func NewIdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		requestKey := strings.TrimSpace(c.Get("X-Idempotency-Key"))
		if requestKey == "" {
			return c.Next()
		}
		if len(requestKey) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "X-Idempotency-Key too long"})
		}

		sum := sha256.Sum256(c.Body())
		bodyHash := hex.EncodeToString(sum[:])
		storeKey := fmt.Sprintf("idemp:%s:%s:%s", c.Method(), c.Path(), requestKey)

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		provisional, _ := json.Marshal(idempotencyEntry{
			InProgress: true,
			BodySHA256: bodyHash,
			CreatedAt:  time.Now().UTC(),
		})
		acquired, err := rdb.SetNX(ctx, storeKey, provisional, provisionalLockTTL).Result()
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "idempotency store unavailable"})
		}

		if !acquired {
			raw, err := rdb.Get(ctx, storeKey).Bytes()
			if err != nil {
				zap.L().Warn("Failed to load idempotency entry",
					zap.String("key", storeKey),
					zap.Error(err),
				)
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "request is already in progress"})
			}

			var cur idempotencyEntry
			if err := json.Unmarshal(raw, &cur); err != nil {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "request is already in progress"})
			}
			if cur.BodySHA256 != "" && cur.BodySHA256 != bodyHash {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "idempotency key reused with different body"})
			}
			if !cur.InProgress && cur.Code != 0 {
				c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
				c.Set("X-Idempotency-Replayed", "true")
				return c.Status(cur.Code).Send(cur.Body)
			}
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "request is already in progress"})
		}

		if err := c.Next(); err != nil {
			// release the slot so the caller can retry a failed attempt
			_ = rdb.Del(context.Background(), storeKey).Err()
			return err
		}

		final, _ := json.Marshal(idempotencyEntry{
			InProgress: false,
			Code:       c.Response().StatusCode(),
			Body:       append([]byte(nil), c.Response().Body()...),
			BodySHA256: bodyHash,
			CreatedAt:  time.Now().UTC(),
		})
		if err := rdb.Set(context.Background(), storeKey, final, ttl).Err(); err != nil {
			zap.L().Warn("Failed to store idempotency entry",
				zap.String("key", storeKey),
				zap.Error(err),
			)
		}
		return nil
	}
}
