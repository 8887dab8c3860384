package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfit_backend/internals/features/fitness/grading"
	fileCtl "schoolfit_backend/internals/features/school/files/controller"
	fileService "schoolfit_backend/internals/features/school/files/service"
	accountService "schoolfit_backend/internals/features/users/account/service"
	middlewares "schoolfit_backend/internals/middlewares"
)

// FileRoutes wires the upload pipelines and job polling.
// Assumes r is already behind auth.
func FileRoutes(r fiber.Router, db *gorm.DB, tables *grading.Store, storage fileService.FileStorage, queue *fileService.TaskQueue) {
	parser := fileService.NewExcelParser()
	rosters := fileService.NewRosterUploadService(db, storage, parser, queue, accountService.NewAccountProvisioner())
	tests := fileService.NewTestUploadService(db, storage, parser, queue, tables)
	exercises := fileService.NewExerciseUploadService(db, storage, parser, queue, tables)
	ctl := fileCtl.NewFileController(db, rosters, tests, exercises)

	files := r.Group("/files")
	files.Post("/students", middlewares.UploadRateLimiter(), ctl.UploadRoster)
	files.Post("/tests", middlewares.UploadRateLimiter(), ctl.UploadTest)
	files.Post("/exercises", middlewares.UploadRateLimiter(), ctl.UploadExercise)
	files.Get("/processes", ctl.ListProcesses)
	files.Get("/processes/:id", ctl.GetProcess)
}
