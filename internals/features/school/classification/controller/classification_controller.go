package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	helper "schoolfit_backend/internals/helpers"
)

type ClassificationController struct {
	DB *gorm.DB
}

func NewClassificationController(db *gorm.DB) *ClassificationController {
	return &ClassificationController{DB: db}
}

type classificationView struct {
	ClassificationID uuid.UUID  `json:"classification_id"`
	SchoolID         uuid.UUID  `json:"school_id"`
	SchoolName       string     `json:"school_name"`
	EntityName       string     `json:"entity_name"`
	EntityInternalID string     `json:"entity_internal_id"`
	EntityGender     string     `json:"entity_gender"`
	Year             *string    `json:"year,omitempty"`
	Class            *string    `json:"class,omitempty"`
	ValidFrom        time.Time  `json:"valid_from"`
	ValidTo          *time.Time `json:"valid_to,omitempty"`
}

// GET /api/u/classifications
// Lists the classifications inside the caller's resolved scope, i.e.
// the students a teacher or parent may see.
func (h *ClassificationController) ListVisible(c *fiber.Ctx) error {
	scopeIDs, err := helper.ScopeIDs(c)
	if err != nil {
		return err
	}
	if len(scopeIDs) == 0 {
		return helper.Success(c, "OK", []classificationView{})
	}

	var views []classificationView
	err = h.DB.WithContext(c.UserContext()).
		Table("classifications AS c").
		Select(`c.classification_id, c.classification_school_id AS school_id,
			s.school_name, e.entity_name, e.entity_internal_id, e.entity_gender,
			cm.classification_map_year AS year, cm.classification_map_class AS class,
			c.classification_valid_from AS valid_from, c.classification_valid_to AS valid_to`).
		Joins("JOIN entities AS e ON e.entity_id = c.classification_entity_id").
		Joins("JOIN schools AS s ON s.school_id = c.classification_school_id").
		Joins("LEFT JOIN classification_maps AS cm ON cm.classification_map_classification_id = c.classification_id").
		Where("c.classification_id IN ?", scopeIDs).
		Order("cm.classification_map_year, cm.classification_map_class, e.entity_name").
		Scan(&views).Error
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list classifications")
	}
	return helper.Success(c, "OK", views)
}
