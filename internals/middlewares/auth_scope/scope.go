package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	permService "schoolfit_backend/internals/features/users/permission/service"
	helper "schoolfit_backend/internals/helpers"
)

// ScopeResolver expands the caller's permission tier into the visible
// classification ID set. Runs after SessionLoader; every read/report
// handler behind it filters by these IDs.
func ScopeResolver(db *gorm.DB) fiber.Handler {
	resolver := permService.NewScopeResolver(permService.NewGormScopeStore(db))

	return func(c *fiber.Ctx) error {
		session, err := helper.GetSession(c)
		if err != nil {
			return err
		}

		ids, err := resolver.ResolveVisibleClassificationIDs(c.UserContext(), session)
		if errors.Is(err, permService.ErrUnauthorized) {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		if err != nil {
			log.Printf("[SCOPE] resolve for %s: %v", session.EntityID, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to resolve access scope")
		}

		c.Locals(helper.LocScopeIDs, ids)
		return c.Next()
	}
}
