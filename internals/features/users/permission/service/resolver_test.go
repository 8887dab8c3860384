package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountModel "schoolfit_backend/internals/features/users/account/model"
	helper "schoolfit_backend/internals/helpers"
)

type fakeScopeStore struct {
	tier      ScopeTier
	hasPerm   bool
	bySelf    map[string][]uuid.UUID // schoolID|internalID
	byChild   map[uuid.UUID][]uuid.UUID
	bySchool  map[uuid.UUID][]uuid.UUID
	byYear    map[string][]uuid.UUID // schoolID|year
	byClass   map[string][]uuid.UUID // schoolID|year|class
	calls     int
}

func (f *fakeScopeStore) PermissionTier(_ context.Context, _ uuid.UUID) (ScopeTier, bool, error) {
	return f.tier, f.hasPerm, nil
}

func (f *fakeScopeStore) SelfClassificationIDs(_ context.Context, schoolID uuid.UUID, internalID string) ([]uuid.UUID, error) {
	f.calls++
	return f.bySelf[schoolID.String()+"|"+internalID], nil
}

func (f *fakeScopeStore) ChildClassificationIDs(_ context.Context, parentEntityID uuid.UUID) ([]uuid.UUID, error) {
	f.calls++
	return f.byChild[parentEntityID], nil
}

func (f *fakeScopeStore) SchoolClassificationIDs(_ context.Context, schoolID uuid.UUID) ([]uuid.UUID, error) {
	f.calls++
	return f.bySchool[schoolID], nil
}

func (f *fakeScopeStore) YearClassificationIDs(_ context.Context, schoolID uuid.UUID, year string) ([]uuid.UUID, error) {
	f.calls++
	return f.byYear[schoolID.String()+"|"+year], nil
}

func (f *fakeScopeStore) ClassClassificationIDs(_ context.Context, schoolID uuid.UUID, year, class string) ([]uuid.UUID, error) {
	f.calls++
	return f.byClass[schoolID.String()+"|"+year+"|"+class], nil
}

func strPtr(s string) *string { return &s }

func testSession(entityID, schoolID, activeID uuid.UUID) *helper.Session {
	active := helper.SessionClassification{
		ClassificationID: activeID,
		EntityID:         entityID,
		SchoolID:         schoolID,
		InternalID:       "20230101",
		Year:             strPtr("三年级"),
		Class:            strPtr("2班"),
		ValidFrom:        time.Now().AddDate(0, -6, 0),
	}
	return &helper.Session{
		EntityID: entityID,
		All:      []helper.SessionClassification{active},
		Active:   []helper.SessionClassification{active},
	}
}

func TestResolveTierPrecedence(t *testing.T) {
	assert.Equal(t, TierNone, ResolveTier(&accountModel.PermissionModel{}))
	assert.Equal(t, TierSchool, ResolveTier(&accountModel.PermissionModel{
		CanAccessSchoolInClassification: true,
	}))
	// Self outranks everything else no matter how many flags are set.
	assert.Equal(t, TierSelf, ResolveTier(&accountModel.PermissionModel{
		CanAccessSchoolInClassification:               true,
		CanAccessYearInClassification:                 true,
		CanAccessClassInClassification:                true,
		CanAccessSameEntityInternalIDInClassification: true,
	}))
	assert.Equal(t, TierChild, ResolveTier(&accountModel.PermissionModel{
		CanAccessChildEntityInternalIDInClassification: true,
		CanAccessSchoolInClassification:                true,
	}))
	assert.Equal(t, TierYear, ResolveTier(&accountModel.PermissionModel{
		CanAccessYearInClassification:  true,
		CanAccessClassInClassification: true,
	}))
}

func TestResolveNoSession(t *testing.T) {
	r := NewScopeResolver(&fakeScopeStore{hasPerm: true})

	_, err := r.ResolveVisibleClassificationIDs(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = r.ResolveVisibleClassificationIDs(context.Background(), &helper.Session{EntityID: uuid.New()})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveNoPermissionRow(t *testing.T) {
	r := NewScopeResolver(&fakeScopeStore{hasPerm: false})
	session := testSession(uuid.New(), uuid.New(), uuid.New())

	_, err := r.ResolveVisibleClassificationIDs(context.Background(), session)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveTierNone(t *testing.T) {
	store := &fakeScopeStore{tier: TierNone, hasPerm: true}
	r := NewScopeResolver(store)
	activeID := uuid.New()
	session := testSession(uuid.New(), uuid.New(), activeID)

	ids, err := r.ResolveVisibleClassificationIDs(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{activeID}, ids)
	assert.Zero(t, store.calls)
}

func TestResolveSelfTier(t *testing.T) {
	entityID, schoolID, activeID := uuid.New(), uuid.New(), uuid.New()
	history := []uuid.UUID{uuid.New(), uuid.New(), activeID}

	store := &fakeScopeStore{
		tier:    TierSelf,
		hasPerm: true,
		bySelf:  map[string][]uuid.UUID{schoolID.String() + "|20230101": history},
	}
	r := NewScopeResolver(store)
	session := testSession(entityID, schoolID, activeID)

	ids, err := r.ResolveVisibleClassificationIDs(context.Background(), session)
	require.NoError(t, err)
	assert.ElementsMatch(t, history, ids)
	assert.Len(t, ids, 3, "active ID must not appear twice")
}

func TestResolveSelfTierWithoutActive(t *testing.T) {
	// A graduated student keeps access to their own history.
	entityID, schoolID := uuid.New(), uuid.New()
	oldID := uuid.New()
	history := []uuid.UUID{oldID, uuid.New()}

	expired := helper.SessionClassification{
		ClassificationID: oldID,
		EntityID:         entityID,
		SchoolID:         schoolID,
		InternalID:       "20180101",
		ValidFrom:        time.Now().AddDate(-5, 0, 0),
	}
	session := &helper.Session{
		EntityID: entityID,
		All:      []helper.SessionClassification{expired},
	}

	store := &fakeScopeStore{
		tier:    TierSelf,
		hasPerm: true,
		bySelf:  map[string][]uuid.UUID{schoolID.String() + "|20180101": history},
	}
	r := NewScopeResolver(store)

	ids, err := r.ResolveVisibleClassificationIDs(context.Background(), session)
	require.NoError(t, err)
	assert.ElementsMatch(t, history, ids)
}

func TestResolveChildTier(t *testing.T) {
	entityID, schoolID, activeID := uuid.New(), uuid.New(), uuid.New()
	childIDs := []uuid.UUID{uuid.New(), uuid.New()}

	store := &fakeScopeStore{
		tier:    TierChild,
		hasPerm: true,
		byChild: map[uuid.UUID][]uuid.UUID{entityID: childIDs},
	}
	r := NewScopeResolver(store)
	session := testSession(entityID, schoolID, activeID)

	ids, err := r.ResolveVisibleClassificationIDs(context.Background(), session)
	require.NoError(t, err)
	assert.ElementsMatch(t, append(childIDs, activeID), ids)
}

func TestResolveSchoolTier(t *testing.T) {
	entityID, schoolID, activeID := uuid.New(), uuid.New(), uuid.New()
	schoolIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	store := &fakeScopeStore{
		tier:     TierSchool,
		hasPerm:  true,
		bySchool: map[uuid.UUID][]uuid.UUID{schoolID: schoolIDs},
	}
	r := NewScopeResolver(store)
	session := testSession(entityID, schoolID, activeID)

	ids, err := r.ResolveVisibleClassificationIDs(context.Background(), session)
	require.NoError(t, err)
	assert.ElementsMatch(t, append(schoolIDs, activeID), ids)
	assert.Equal(t, 1, store.calls)
}

func TestResolveYearTier(t *testing.T) {
	entityID, schoolID, activeID := uuid.New(), uuid.New(), uuid.New()
	yearIDs := []uuid.UUID{uuid.New(), uuid.New()}

	store := &fakeScopeStore{
		tier:    TierYear,
		hasPerm: true,
		byYear:  map[string][]uuid.UUID{schoolID.String() + "|三年级": yearIDs},
	}
	r := NewScopeResolver(store)
	session := testSession(entityID, schoolID, activeID)

	ids, err := r.ResolveVisibleClassificationIDs(context.Background(), session)
	require.NoError(t, err)
	assert.ElementsMatch(t, append(yearIDs, activeID), ids)
}

func TestResolveClassTier(t *testing.T) {
	entityID, schoolID, activeID := uuid.New(), uuid.New(), uuid.New()
	classIDs := []uuid.UUID{uuid.New()}

	store := &fakeScopeStore{
		tier:    TierClass,
		hasPerm: true,
		byClass: map[string][]uuid.UUID{schoolID.String() + "|三年级|2班": classIDs},
	}
	r := NewScopeResolver(store)
	session := testSession(entityID, schoolID, activeID)

	ids, err := r.ResolveVisibleClassificationIDs(context.Background(), session)
	require.NoError(t, err)
	assert.ElementsMatch(t, append(classIDs, activeID), ids)
}

func TestResolveClassTierSkipsUnlabeledClassifications(t *testing.T) {
	entityID, schoolID, activeID := uuid.New(), uuid.New(), uuid.New()
	session := testSession(entityID, schoolID, activeID)
	session.Active[0].Year = nil
	session.Active[0].Class = nil
	session.All = session.Active

	store := &fakeScopeStore{tier: TierClass, hasPerm: true}
	r := NewScopeResolver(store)

	ids, err := r.ResolveVisibleClassificationIDs(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{activeID}, ids)
	assert.Zero(t, store.calls)
}
