package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	accountModel "schoolfit_backend/internals/features/users/account/model"
)

type GormScopeStore struct {
	db *gorm.DB
}

func NewGormScopeStore(db *gorm.DB) *GormScopeStore {
	return &GormScopeStore{db: db}
}

func (s *GormScopeStore) PermissionTier(ctx context.Context, entityID uuid.UUID) (ScopeTier, bool, error) {
	var perm accountModel.PermissionModel
	err := s.db.WithContext(ctx).
		Where("permission_entity_id = ?", entityID).
		First(&perm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return TierNone, false, nil
	}
	if err != nil {
		return TierNone, false, err
	}
	return ResolveTier(&perm), true, nil
}

func (s *GormScopeStore) SelfClassificationIDs(ctx context.Context, schoolID uuid.UUID, internalID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Table("classifications AS c").
		Joins("JOIN entities AS e ON e.entity_id = c.classification_entity_id").
		Where("c.classification_school_id = ? AND e.entity_internal_id = ?", schoolID, internalID).
		Pluck("c.classification_id", &ids).Error
	return ids, err
}

func (s *GormScopeStore) ChildClassificationIDs(ctx context.Context, parentEntityID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Table("classifications AS c").
		Joins("JOIN entities AS e ON e.entity_id = c.classification_entity_id").
		Where("e.entity_is_child_of = ?", parentEntityID).
		Pluck("c.classification_id", &ids).Error
	return ids, err
}

func (s *GormScopeStore) SchoolClassificationIDs(ctx context.Context, schoolID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Table("classifications").
		Where("classification_school_id = ?", schoolID).
		Pluck("classification_id", &ids).Error
	return ids, err
}

func (s *GormScopeStore) YearClassificationIDs(ctx context.Context, schoolID uuid.UUID, year string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Table("classifications AS c").
		Joins("JOIN classification_maps AS cm ON cm.classification_map_classification_id = c.classification_id").
		Where("c.classification_school_id = ? AND cm.classification_map_year = ?", schoolID, year).
		Pluck("c.classification_id", &ids).Error
	return ids, err
}

func (s *GormScopeStore) ClassClassificationIDs(ctx context.Context, schoolID uuid.UUID, year, class string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Table("classifications AS c").
		Joins("JOIN classification_maps AS cm ON cm.classification_map_classification_id = c.classification_id").
		Where("c.classification_school_id = ? AND cm.classification_map_year = ? AND cm.classification_map_class = ?", schoolID, year, class).
		Pluck("c.classification_id", &ids).Error
	return ids, err
}
