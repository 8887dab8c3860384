package controller

import (
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	fileDTO "schoolfit_backend/internals/features/school/files/dto"
	fileModel "schoolfit_backend/internals/features/school/files/model"
	fileService "schoolfit_backend/internals/features/school/files/service"
	helper "schoolfit_backend/internals/helpers"
)

type FileController struct {
	DB        *gorm.DB
	Rosters   *fileService.RosterUploadService
	Tests     *fileService.TestUploadService
	Exercises *fileService.ExerciseUploadService
}

func NewFileController(db *gorm.DB, rosters *fileService.RosterUploadService, tests *fileService.TestUploadService, exercises *fileService.ExerciseUploadService) *FileController {
	return &FileController{DB: db, Rosters: rosters, Tests: tests, Exercises: exercises}
}

func readUpload(c *fiber.Ctx) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Missing file field")
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Cannot open upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Cannot read upload")
	}
	return fh.Filename, data, nil
}

// POST /api/a/files/students
// multipart: file, school_id, from_year, to_year
func (h *FileController) UploadRoster(c *fiber.Ctx) error {
	entityID, err := helper.GetEntityIDFromLocals(c)
	if err != nil {
		return err
	}
	schoolID, err := uuid.Parse(c.FormValue("school_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid school_id")
	}
	fromYear, err1 := strconv.Atoi(c.FormValue("from_year"))
	toYear, err2 := strconv.Atoi(c.FormValue("to_year"))
	if err1 != nil || err2 != nil || toYear <= fromYear {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid academic year range")
	}

	name, data, err := readUpload(c)
	if err != nil {
		return err
	}

	result, err := h.Rosters.Upload(c.UserContext(), entityID, schoolID, name, data, fromYear, toYear)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Upload failed")
	}
	return helper.SuccessWithCode(c, fiber.StatusAccepted, "Roster upload received", result)
}

// POST /api/a/files/tests
// multipart: file, school_id, fitness_test_id, is_redo
func (h *FileController) UploadTest(c *fiber.Ctx) error {
	entityID, err := helper.GetEntityIDFromLocals(c)
	if err != nil {
		return err
	}
	schoolID, err := uuid.Parse(c.FormValue("school_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid school_id")
	}
	fitnessTestID, err := uuid.Parse(c.FormValue("fitness_test_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid fitness_test_id")
	}
	isRedo := c.FormValue("is_redo") == "true" || c.FormValue("is_redo") == "1"

	name, data, err := readUpload(c)
	if err != nil {
		return err
	}

	result, err := h.Tests.Upload(c.UserContext(), entityID, schoolID, fitnessTestID, name, data, isRedo)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Upload failed")
	}
	return helper.SuccessWithCode(c, fiber.StatusAccepted, "Test upload received", result)
}

// POST /api/a/files/exercises
// multipart: file, school_id, exercise_date (2006-01-02)
func (h *FileController) UploadExercise(c *fiber.Ctx) error {
	session, err := helper.GetSession(c)
	if err != nil {
		return err
	}
	if len(session.Active) == 0 {
		return helper.Error(c, fiber.StatusBadRequest, "No active classification to record from")
	}
	recordedBy := session.Active[0].ClassificationID

	schoolID, err := uuid.Parse(c.FormValue("school_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid school_id")
	}
	exerciseDate, err := time.Parse("2006-01-02", c.FormValue("exercise_date"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid exercise_date")
	}

	name, data, err := readUpload(c)
	if err != nil {
		return err
	}

	result, err := h.Exercises.Upload(c.UserContext(), session.EntityID, schoolID, recordedBy, exerciseDate, name, data)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Upload failed")
	}
	return helper.SuccessWithCode(c, fiber.StatusAccepted, "Exercise upload received", result)
}

// GET /api/a/files/processes/:id
func (h *FileController) GetProcess(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid process ID")
	}

	var process fileModel.FileProcessModel
	if err := h.DB.WithContext(c.UserContext()).
		Where("file_process_id = ?", id).
		First(&process).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.Error(c, fiber.StatusNotFound, "Process not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load process")
	}

	var messages []fileModel.FileProcessMessageModel
	if err := h.DB.WithContext(c.UserContext()).
		Where("file_process_message_process_id = ?", id).
		Order("file_process_message_created_at ASC").
		Find(&messages).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load messages")
	}

	resp := fileDTO.FileProcessDetailResponse{
		FileProcessResponse: fileDTO.NewFileProcessResponse(&process),
		Messages:            make([]fileDTO.FileProcessMessageResponse, 0, len(messages)),
	}
	for i := range messages {
		resp.Messages = append(resp.Messages, fileDTO.NewFileProcessMessageResponse(&messages[i]))
	}
	return helper.Success(c, "OK", resp)
}

// GET /api/a/files/processes?status=&nature=&page=&per_page=
func (h *FileController) ListProcesses(c *fiber.Ctx) error {
	entityID, err := helper.GetEntityIDFromLocals(c)
	if err != nil {
		return err
	}

	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	q := h.DB.WithContext(c.UserContext()).Model(&fileModel.FileProcessModel{}).
		Where("file_process_requested_by_entity = ?", entityID)
	if status := c.Query("status"); status != "" {
		q = q.Where("file_process_status = ?", status)
	}
	if nature := c.Query("nature"); nature != "" {
		q = q.Where("file_process_nature = ?", nature)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to count processes")
	}

	order, err := p.SafeOrderClause(map[string]string{
		"created_at": "file_process_created_at",
		"status":     "file_process_status",
	}, "created_at")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid sort")
	}

	var processes []fileModel.FileProcessModel
	if err := q.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&processes).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list processes")
	}

	items := make([]fileDTO.FileProcessResponse, 0, len(processes))
	for i := range processes {
		items = append(items, fileDTO.NewFileProcessResponse(&processes[i]))
	}
	return helper.Success(c, "OK", fiber.Map{
		"items": items,
		"meta":  helper.BuildMeta(total, p),
	})
}
