package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfit_backend/internals/features/fitness/grading"
	classCtl "schoolfit_backend/internals/features/school/classification/controller"
	recordCtl "schoolfit_backend/internals/features/school/records/controller"
)

// RecordRoutes: record listing, per-student reports and the measure
// catalog. Assumes r is behind auth + session + scope resolution.
func RecordRoutes(r fiber.Router, db *gorm.DB, tables *grading.Store) {
	ctl := recordCtl.NewRecordController(db, tables)
	testCtl := recordCtl.NewFitnessTestController(db)

	records := r.Group("/records")
	records.Get("/", ctl.ListRecords)
	records.Get("/report/:classification_id", ctl.StudentReport)

	r.Get("/measure-types", testCtl.ListMeasureTypes)
}

// ClassificationRoutes: the caller's visible classification list.
func ClassificationRoutes(r fiber.Router, db *gorm.DB) {
	ctl := classCtl.NewClassificationController(db)
	r.Get("/classifications", ctl.ListVisible)
}

// FitnessTestRoutes: admin management of whole-school test dates.
func FitnessTestRoutes(r fiber.Router, db *gorm.DB) {
	ctl := recordCtl.NewFitnessTestController(db)

	tests := r.Group("/fitness-tests")
	tests.Post("/", ctl.Create)
	tests.Get("/", ctl.List)
	tests.Get("/:id", ctl.GetByID)
}
