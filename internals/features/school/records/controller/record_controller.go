package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolfit_backend/internals/features/fitness/grading"
	recordDTO "schoolfit_backend/internals/features/school/records/dto"
	recordModel "schoolfit_backend/internals/features/school/records/model"
	helper "schoolfit_backend/internals/helpers"
)

type RecordController struct {
	DB     *gorm.DB
	Tables *grading.Store
}

func NewRecordController(db *gorm.DB, tables *grading.Store) *RecordController {
	return &RecordController{DB: db, Tables: tables}
}

func scopeContains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// GET /api/u/records?classification_id=&measure=&nature=
// Every read is filtered by the caller's resolved scope.
func (h *RecordController) ListRecords(c *fiber.Ctx) error {
	scopeIDs, err := helper.ScopeIDs(c)
	if err != nil {
		return err
	}
	if len(scopeIDs) == 0 {
		return helper.Success(c, "OK", []recordDTO.RecordResponse{})
	}

	q := h.DB.WithContext(c.UserContext()).Model(&recordModel.RecordModel{})

	if raw := c.Query("classification_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "Invalid classification_id")
		}
		if !scopeContains(scopeIDs, id) {
			return helper.Error(c, fiber.StatusForbidden, "Classification outside your scope")
		}
		q = q.Where("record_to_classification_id = ?", id)
	} else {
		q = q.Where("record_to_classification_id IN ?", scopeIDs)
	}
	if measure := c.Query("measure"); measure != "" {
		q = q.Where("record_measure = ?", measure)
	}
	if nature := c.Query("nature"); nature != "" {
		q = q.Where("record_nature = ?", nature)
	}

	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to count records")
	}
	order, err := p.SafeOrderClause(map[string]string{
		"created_at": "record_created_at",
		"measure":    "record_measure",
	}, "created_at")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid sort")
	}

	var records []recordModel.RecordModel
	if err := q.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&records).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to list records")
	}

	items := make([]recordDTO.RecordResponse, 0, len(records))
	for i := range records {
		items = append(items, recordDTO.NewRecordResponse(&records[i]))
	}
	return helper.Success(c, "OK", fiber.Map{
		"items": items,
		"meta":  helper.BuildMeta(total, p),
	})
}

// GET /api/u/records/report/:classification_id
// Aggregates one classification's test records: best attempt per
// measure, weighted total, overall grade.
func (h *RecordController) StudentReport(c *fiber.Ctx) error {
	scopeIDs, err := helper.ScopeIDs(c)
	if err != nil {
		return err
	}
	classificationID, err := uuid.Parse(c.Params("classification_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid classification ID")
	}
	if !scopeContains(scopeIDs, classificationID) {
		return helper.Error(c, fiber.StatusForbidden, "Classification outside your scope")
	}

	var meta struct {
		Year       *string
		SchoolType string
	}
	if err := h.DB.WithContext(c.UserContext()).
		Table("classifications AS c").
		Select("cm.classification_map_year AS year, s.school_type AS school_type").
		Joins("JOIN schools AS s ON s.school_id = c.classification_school_id").
		Joins("LEFT JOIN classification_maps AS cm ON cm.classification_map_classification_id = c.classification_id").
		Where("c.classification_id = ?", classificationID).
		Take(&meta).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load classification")
	}
	year := meta.Year
	if year != nil && *year == "" {
		year = nil
	}

	var records []recordModel.RecordModel
	if err := h.DB.WithContext(c.UserContext()).
		Where("record_to_classification_id = ? AND record_nature = ?", classificationID, recordModel.RecordNatureTest).
		Where("record_normalized_score IS NOT NULL").
		Order("record_created_at ASC").
		Find(&records).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load records")
	}

	// Best attempt per measure; redo and makeup records compete with
	// the originals on normalized score alone.
	best := make(map[string]*recordModel.RecordModel, len(records))
	var results []grading.MeasureResult
	for i := range records {
		r := &records[i]
		cur, ok := best[r.RecordMeasure]
		if !ok || *r.RecordNormalizedScore > *cur.RecordNormalizedScore {
			best[r.RecordMeasure] = r
		}
		result := grading.MeasureResult{
			Measure:         r.RecordMeasure,
			NormalizedScore: *r.RecordNormalizedScore,
		}
		if r.RecordAdditionalScore != nil {
			result.BonusScore = *r.RecordAdditionalScore
		}
		results = append(results, result)
	}

	yearLabel := ""
	if year != nil {
		yearLabel = *year
	}
	total := grading.Aggregate(results, meta.SchoolType, yearLabel)

	resp := recordDTO.StudentReportResponse{
		ClassificationID: classificationID,
		Year:             year,
		TotalScore:       total,
		OverallGrade:     h.Tables.Classify(total),
		Measures:         make([]recordDTO.RecordResponse, 0, len(best)),
	}
	for _, r := range best {
		resp.Measures = append(resp.Measures, recordDTO.NewRecordResponse(r))
	}
	return helper.Success(c, "OK", resp)
}
