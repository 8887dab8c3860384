package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	helper "schoolfit_backend/internals/helpers"
)

var ErrUnauthorized = errors.New("permission: unauthorized")

// ScopeStore is the persistence surface the resolver walks. The GORM
// implementation lives in gorm_store.go; tests use an in-memory fake.
type ScopeStore interface {
	// PermissionTier loads the caller's permission row collapsed to a
	// tier. Returns (TierNone, false, nil) when no row exists.
	PermissionTier(ctx context.Context, entityID uuid.UUID) (ScopeTier, bool, error)

	SelfClassificationIDs(ctx context.Context, schoolID uuid.UUID, internalID string) ([]uuid.UUID, error)
	ChildClassificationIDs(ctx context.Context, parentEntityID uuid.UUID) ([]uuid.UUID, error)
	SchoolClassificationIDs(ctx context.Context, schoolID uuid.UUID) ([]uuid.UUID, error)
	YearClassificationIDs(ctx context.Context, schoolID uuid.UUID, year string) ([]uuid.UUID, error)
	ClassClassificationIDs(ctx context.Context, schoolID uuid.UUID, year, class string) ([]uuid.UUID, error)
}

type ScopeResolver struct {
	store ScopeStore
}

func NewScopeResolver(store ScopeStore) *ScopeResolver {
	return &ScopeResolver{store: store}
}

// ResolveVisibleClassificationIDs expands the caller's permission tier
// into the set of classification IDs they may read or write. Only the
// highest-precedence set flag is expanded; the result always includes
// the caller's own active classification IDs.
func (r *ScopeResolver) ResolveVisibleClassificationIDs(ctx context.Context, session *helper.Session) ([]uuid.UUID, error) {
	if session == nil || len(session.All) == 0 {
		return nil, ErrUnauthorized
	}

	tier, found, err := r.store.PermissionTier(ctx, session.EntityID)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Printf("[SCOPE] entity %s has no permission row", session.EntityID)
		return nil, ErrUnauthorized
	}

	var visible []uuid.UUID
	switch tier {
	case TierSelf:
		// A student's own history across years, per school they ever
		// belonged to. Active membership is not required.
		for _, schoolID := range uniqueSchoolIDs(session.All) {
			ids, err := r.store.SelfClassificationIDs(ctx, schoolID, internalIDOf(session))
			if err != nil {
				return nil, err
			}
			visible = append(visible, ids...)
		}
	case TierChild:
		ids, err := r.store.ChildClassificationIDs(ctx, session.EntityID)
		if err != nil {
			return nil, err
		}
		visible = ids
	case TierSchool:
		for _, schoolID := range uniqueSchoolIDs(session.Active) {
			ids, err := r.store.SchoolClassificationIDs(ctx, schoolID)
			if err != nil {
				return nil, err
			}
			visible = append(visible, ids...)
		}
	case TierYear:
		for _, sc := range session.Active {
			if sc.Year == nil {
				continue
			}
			ids, err := r.store.YearClassificationIDs(ctx, sc.SchoolID, *sc.Year)
			if err != nil {
				return nil, err
			}
			visible = append(visible, ids...)
		}
	case TierClass:
		for _, sc := range session.Active {
			if sc.Year == nil || sc.Class == nil {
				continue
			}
			ids, err := r.store.ClassClassificationIDs(ctx, sc.SchoolID, *sc.Year, *sc.Class)
			if err != nil {
				return nil, err
			}
			visible = append(visible, ids...)
		}
	}

	for _, sc := range session.Active {
		visible = append(visible, sc.ClassificationID)
	}
	return dedupeIDs(visible), nil
}

func internalIDOf(session *helper.Session) string {
	for _, sc := range session.All {
		if sc.InternalID != "" {
			return sc.InternalID
		}
	}
	return ""
}

func uniqueSchoolIDs(classifications []helper.SessionClassification) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(classifications))
	var out []uuid.UUID
	for _, sc := range classifications {
		if _, ok := seen[sc.SchoolID]; ok {
			continue
		}
		seen[sc.SchoolID] = struct{}{}
		out = append(out, sc.SchoolID)
	}
	return out
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
