package helper

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals keys hydrated by the auth / session / scope middlewares.
const (
	LocJWTClaims = "jwt_claims"
	LocEntityID  = "entity_id"
	LocSession   = "session"
	LocScopeIDs  = "scope_classification_ids"
)

// SessionClassification is one classification of the calling entity,
// denormalized with its map labels and school fields.
type SessionClassification struct {
	ClassificationID uuid.UUID
	EntityID         uuid.UUID
	SchoolID         uuid.UUID
	SchoolType       string
	Name             string
	InternalID       string
	Gender           string
	Year             *string
	Class            *string
	ValidFrom        time.Time
	ValidTo          *time.Time
}

// Session carries the caller's classifications; Active is the subset
// whose validity window covers now.
type Session struct {
	EntityID uuid.UUID
	All      []SessionClassification
	Active   []SessionClassification
}

func GetEntityIDFromLocals(c *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := c.Locals(LocEntityID).(string)
	if !ok || raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return id, nil
}

func GetSession(c *fiber.Ctx) (*Session, error) {
	s, ok := c.Locals(LocSession).(*Session)
	if !ok || s == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return s, nil
}

// ScopeIDs returns the visible classification IDs resolved by the
// scope middleware. Controllers filter every read by this set.
func ScopeIDs(c *fiber.Ctx) ([]uuid.UUID, error) {
	ids, ok := c.Locals(LocScopeIDs).([]uuid.UUID)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return ids, nil
}
