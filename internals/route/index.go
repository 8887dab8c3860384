package routes

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfit_backend/internals/features/fitness/grading"
	fileService "schoolfit_backend/internals/features/school/files/service"
	scopeMiddleware "schoolfit_backend/internals/middlewares/auth_scope"
	routeDetails "schoolfit_backend/internals/route/details"
)

var startTime time.Time

// Deps carries the long-lived collaborators the route tree needs.
// They are constructed once in main.
type Deps struct {
	Tables  *grading.Store
	Storage fileService.FileStorage
	Queue   *fileService.TaskQueue
}

func SetupRoutes(app *fiber.App, db *gorm.DB, deps Deps) {
	startTime = time.Now()

	BaseRoutes(app, db)

	secret := os.Getenv("JWT_SECRET")
	authed := []fiber.Handler{
		scopeMiddleware.AuthJWT(scopeMiddleware.AuthJWTOpts{
			Secret:              secret,
			AllowCookieFallback: true,
		}),
		scopeMiddleware.SessionLoader(db),
	}

	// USER group: reads gated by the resolved access scope.
	log.Println("[INFO] Setting up USER group...")
	user := app.Group("/api/u", authed...)
	user.Use(scopeMiddleware.ScopeResolver(db))
	routeDetails.RecordRoutes(user, db, deps.Tables)
	routeDetails.ClassificationRoutes(user, db)

	// ADMIN group: uploads and fitness-test management.
	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/a", authed...)
	routeDetails.FileRoutes(admin, db, deps.Tables, deps.Storage, deps.Queue)
	routeDetails.FitnessTestRoutes(admin, db)
}
