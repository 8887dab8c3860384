package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	helper "schoolfit_backend/internals/helpers"
)

type sessionRow struct {
	ClassificationID uuid.UUID
	EntityID         uuid.UUID
	SchoolID         uuid.UUID
	SchoolType       string
	EntityName       string
	EntityInternalID string
	EntityGender     string
	MapYear          *string
	MapClass         *string
	ValidFrom        time.Time
	ValidTo          *time.Time
}

// SessionLoader loads the caller's classifications, denormalized with
// school and map labels, and stores them as the request session.
// Runs after AuthJWT.
func SessionLoader(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityID, err := helper.GetEntityIDFromLocals(c)
		if err != nil {
			return err
		}

		var rows []sessionRow
		err = db.WithContext(c.UserContext()).
			Table("classifications AS c").
			Select(`c.classification_id, c.classification_entity_id AS entity_id,
				c.classification_school_id AS school_id, s.school_type,
				e.entity_name, e.entity_internal_id, e.entity_gender,
				cm.classification_map_year AS map_year, cm.classification_map_class AS map_class,
				c.classification_valid_from AS valid_from, c.classification_valid_to AS valid_to`).
			Joins("JOIN entities AS e ON e.entity_id = c.classification_entity_id").
			Joins("JOIN schools AS s ON s.school_id = c.classification_school_id").
			Joins("LEFT JOIN classification_maps AS cm ON cm.classification_map_classification_id = c.classification_id").
			Where("c.classification_entity_id = ?", entityID).
			Scan(&rows).Error
		if err != nil {
			log.Printf("[SESSION] load classifications for %s: %v", entityID, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load session")
		}

		session := &helper.Session{EntityID: entityID}
		now := time.Now()
		for _, r := range rows {
			sc := helper.SessionClassification{
				ClassificationID: r.ClassificationID,
				EntityID:         r.EntityID,
				SchoolID:         r.SchoolID,
				SchoolType:       r.SchoolType,
				Name:             r.EntityName,
				InternalID:       r.EntityInternalID,
				Gender:           r.EntityGender,
				Year:             r.MapYear,
				Class:            r.MapClass,
				ValidFrom:        r.ValidFrom,
				ValidTo:          r.ValidTo,
			}
			session.All = append(session.All, sc)
			if covers(sc, now) {
				session.Active = append(session.Active, sc)
			}
		}
		c.Locals(helper.LocSession, session)

		return c.Next()
	}
}

func covers(sc helper.SessionClassification, t time.Time) bool {
	if t.Before(sc.ValidFrom) {
		return false
	}
	return sc.ValidTo == nil || !sc.ValidTo.Before(t)
}
