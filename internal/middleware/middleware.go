package middleware

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"foodies-api/internal/metrics"
	"foodies-api/pkg/identity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	LocalUserID = "user_id"
	LocalViewer = "viewer"
)

type (
	Middleware interface {
		CORSMiddleware() fiber.Handler
		AuthRequired() fiber.Handler
		AuthOptional() fiber.Handler
		AdminOnly() fiber.Handler
		NormalizeQuery(keys ...string) fiber.Handler
		Metrics() fiber.Handler
	}

	middleware struct {
		resolver identity.Resolver
		admins   map[string]struct{}
	}
)

// NewMiddleware takes the ids of the users AdminOnly lets through.
func NewMiddleware(resolver identity.Resolver, adminIDs []string) Middleware {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			admins[id] = struct{}{}
		}
	}
	return &middleware{resolver: resolver, admins: admins}
}

func (m *middleware) CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	})
}

// NormalizeQuery rewrites the given query values to a leading capital and
// lower-case remainder, the way category and area names are stored.
func (m *middleware) NormalizeQuery(keys ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		args := c.Context().QueryArgs()
		for _, key := range keys {
			if raw := c.Query(key); raw != "" {
				args.Set(key, Capitalize(raw))
			}
		}
		return c.Next()
	}
}

func Capitalize(s string) string {
	runes := []rune(strings.TrimSpace(s))
	for i, r := range runes {
		if i == 0 {
			runes[i] = unicode.ToUpper(r)
		} else {
			runes[i] = unicode.ToLower(r)
		}
	}
	return string(runes)
}

func (m *middleware) Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}
