package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HeaderClientID carries the tenant an export request acts for. It is set
// by the gateway in front of this service.
const HeaderClientID = "X-Client-ID"

const (
	clientIDLocal        = "client_id"
	clientIDKey   ctxKey = "client_id"
)

// ClientMiddleware rejects requests without a client id and stores it for
// handlers.
func ClientMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderClientID))
		if id == "" {
			return errUnauthorized(c, HeaderClientID+" header is required")
		}
		if len(id) > 128 {
			return errBadRequest(c, HeaderClientID+" header is too long")
		}
		c.Locals(clientIDLocal, id)
		ctx := context.WithValue(c.UserContext(), clientIDKey, id)
		c.SetUserContext(WithLogger(ctx, LoggerFromCtx(ctx).With("client_id", id)))
		return c.Next()
	}
}

func clientID(c *fiber.Ctx) string {
	id, _ := c.Locals(clientIDLocal).(string)
	return id
}

// ClientIDFromCtx returns the client id stored by ClientMiddleware.
func ClientIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey).(string)
	return id
}
