package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	recordDTO "schoolfit_backend/internals/features/school/records/dto"
	recordModel "schoolfit_backend/internals/features/school/records/model"
	helper "schoolfit_backend/internals/helpers"
)

type FitnessTestController struct {
	DB *gorm.DB
}

func NewFitnessTestController(db *gorm.DB) *FitnessTestController {
	return &FitnessTestController{DB: db}
}

var validateFitnessTest = validator.New()

// POST /api/a/fitness-tests
func (h *FitnessTestController) Create(c *fiber.Ctx) error {
	var req recordDTO.CreateFitnessTestRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := validateFitnessTest.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	m := recordModel.FitnessTestModel{
		FitnessTestSchoolID: req.SchoolID,
		FitnessTestName:     req.Name,
		FitnessTestDate:     req.Date,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create fitness test")
	}
	return helper.JsonCreated(c, "Fitness test created", recordDTO.NewFitnessTestResponse(&m, false))
}

// GET /api/a/fitness-tests?school_id=
func (h *FitnessTestController) List(c *fiber.Ctx) error {
	schoolID, err := uuid.Parse(c.Query("school_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid school_id")
	}

	var tests []recordModel.FitnessTestModel
	if err := h.DB.WithContext(c.UserContext()).
		Where("fitness_test_school_id = ?", schoolID).
		Order("fitness_test_date DESC").
		Find(&tests).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list fitness tests")
	}

	items := make([]recordDTO.FitnessTestResponse, 0, len(tests))
	for i := range tests {
		items = append(items, recordDTO.NewFitnessTestResponse(&tests[i], false))
	}
	return helper.Success(c, "OK", items)
}

// GET /api/a/fitness-tests/:id
// Includes the accumulated per-class summaries.
func (h *FitnessTestController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid fitness test ID")
	}

	var m recordModel.FitnessTestModel
	if err := h.DB.WithContext(c.UserContext()).
		Where("fitness_test_id = ?", id).
		First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.Error(c, fiber.StatusNotFound, "Fitness test not found")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load fitness test")
	}
	return helper.Success(c, "OK", recordDTO.NewFitnessTestResponse(&m, true))
}

// GET /api/u/measure-types
func (h *FitnessTestController) ListMeasureTypes(c *fiber.Ctx) error {
	var types []recordModel.MeasureTypeModel
	if err := h.DB.WithContext(c.UserContext()).
		Order("measure_type_name ASC").
		Find(&types).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list measure types")
	}
	return helper.Success(c, "OK", types)
}
