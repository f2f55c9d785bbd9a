// Package owner resolves the caller identity from the request and scopes
// queries to it.
package owner

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
)

// LocalsKey is where the JWT middleware stores the parsed token.
const LocalsKey = "user"

// GetOwnerID extracts the user UUID from the JWT claims in context.
// Missing or malformed identity is reported as errs.ErrUnauthenticated.
func GetOwnerID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, fmt.Errorf("%w: no token in context", errs.ErrUnauthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: invalid claims", errs.ErrUnauthenticated)
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: missing sub claim", errs.ErrUnauthenticated)
	}

	id, err := uuid.Parse(sub)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: malformed sub claim", errs.ErrUnauthenticated)
	}
	return id, nil
}

// Email returns the email claim, or "" when absent.
func Email(c *fiber.Ctx) string {
	token, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok || token == nil {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}

// Require rejects the zero identity.
func Require(ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return errs.ErrUnauthenticated
	}
	return nil
}
