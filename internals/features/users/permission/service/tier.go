package service

import (
	"schoolfit_backend/internals/features/users/account/model"
)

// ScopeTier is the single access level a permission row collapses to.
// The flags on a permission row form a strict precedence ladder, so
// exactly one tier applies per caller.
type ScopeTier int

const (
	TierNone ScopeTier = iota
	TierSelf
	TierChild
	TierSchool
	TierYear
	TierClass
)

func (t ScopeTier) String() string {
	switch t {
	case TierSelf:
		return "self"
	case TierChild:
		return "child"
	case TierSchool:
		return "school"
	case TierYear:
		return "year"
	case TierClass:
		return "class"
	}
	return "none"
}

// ResolveTier collapses the permission flags into one tier. Only the
// first set flag counts; flags never combine.
func ResolveTier(p *model.PermissionModel) ScopeTier {
	switch {
	case p.CanAccessSameEntityInternalIDInClassification:
		return TierSelf
	case p.CanAccessChildEntityInternalIDInClassification:
		return TierChild
	case p.CanAccessSchoolInClassification:
		return TierSchool
	case p.CanAccessYearInClassification:
		return TierYear
	case p.CanAccessClassInClassification:
		return TierClass
	}
	return TierNone
}
