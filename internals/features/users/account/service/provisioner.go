package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"schoolfit_backend/internals/features/users/account/model"
)

// AccountProfile is what the ingestion pipeline knows about a student
// when a row has no matching entity yet.
type AccountProfile struct {
	Name         string
	InternalID   string
	Gender       string
	IDCardNumber string
	SchoolID     uuid.UUID
}

// AccountProvisioner creates login credentials for entities the
// ingestion pipeline discovers. The tx argument is the caller's
// row-scoped transaction so a later row failure rolls the account
// back with everything else.
type AccountProvisioner interface {
	CreateAccount(ctx context.Context, tx *gorm.DB, profile AccountProfile) (uuid.UUID, error)
}

type accountProvisioner struct{}

func NewAccountProvisioner() AccountProvisioner {
	return &accountProvisioner{}
}

// CreateAccount inserts the entity with a synthetic email and a
// bcrypt hash of the initial password.
func (p *accountProvisioner) CreateAccount(ctx context.Context, tx *gorm.DB, profile AccountProfile) (uuid.UUID, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(initialPassword(profile)), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("account: hash password: %w", err)
	}

	entity := model.EntityModel{
		EntityName:         profile.Name,
		EntityInternalID:   profile.InternalID,
		EntityGender:       profile.Gender,
		EntityType:         model.EntityTypeStudent,
		EntityEmail:        fmt.Sprintf("%s_%s@school.local", profile.InternalID, profile.SchoolID),
		EntityPasswordHash: string(hash),
	}
	if err := tx.WithContext(ctx).Create(&entity).Error; err != nil {
		return uuid.Nil, fmt.Errorf("account: create entity: %w", err)
	}
	return entity.EntityID, nil
}

// Initial password is the last six characters of the ID card number.
// Rows without one fall back to internal ID plus school prefix.
func initialPassword(profile AccountProfile) string {
	if n := len(profile.IDCardNumber); n >= 6 {
		return profile.IDCardNumber[n-6:]
	}
	return profile.InternalID + "@" + profile.SchoolID.String()[:8]
}
