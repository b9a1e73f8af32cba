package meals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coreybb/dietlog/datastore"
	"github.com/coreybb/dietlog/datefmt"
	"github.com/coreybb/dietlog/models"
)

type fixture struct {
	store *datastore.MemoryStore
	svc   *Service
	alice models.User
	bob   models.User
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := datastore.NewMemoryStore()

	alice := models.User{ID: uuid.NewString(), Name: "alice", CreatedAt: time.Now()}
	bob := models.User{ID: uuid.NewString(), Name: "bob", CreatedAt: time.Now()}
	require.NoError(t, store.CreateUser(ctx, &alice))
	require.NoError(t, store.CreateUser(ctx, &bob))

	f := &fixture{store: store, alice: alice, bob: bob}
	f.now = time.Date(2023, 3, 20, 12, 0, 0, 0, time.UTC)
	f.svc = NewService(store, datefmt.New(time.UTC), zap.NewNop(), WithClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) create(t *testing.T, user models.User, name, date string, within bool) string {
	t.Helper()
	require.NoError(t, f.svc.Create(context.Background(), user, models.MealInput{
		Name:        name,
		Description: name + " at home",
		Date:        date,
		WithinDiet:  within,
	}))
	views, err := f.svc.List(context.Background(), user)
	require.NoError(t, err)
	for _, v := range views {
		if v.Name == name {
			return v.ID
		}
	}
	t.Fatalf("meal %q not listed after create", name)
	return ""
}

func TestCreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, f.alice, "dinner", "2023-03-18 18:40:25", false)
	f.create(t, f.alice, "breakfast", "2023-03-18 07:15:00", true)
	f.create(t, f.alice, "lunch", "2023-03-18 10:40:25", true)

	views, err := f.svc.List(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, []string{"breakfast", "lunch", "dinner"}, []string{views[0].Name, views[1].Name, views[2].Name})
	assert.Equal(t, "2023-03-18 07:15:00", views[0].Date)
	assert.Equal(t, "2023-03-18 18:40:25", views[2].Date)
	for _, v := range views {
		assert.Equal(t, f.alice.ID, v.UserID)
		assert.Equal(t, f.now.UnixMilli(), v.CreatedAt)
		assert.Nil(t, v.UpdatedAt)
	}
}

func TestListIsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.alice, "lunch", "2023-03-18 10:40:25", true)

	views, err := f.svc.List(context.Background(), f.bob)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestCreateRejectsMalformedDate(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Create(context.Background(), f.alice, models.MealInput{Name: "lunch", Date: "yesterday"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestCreateAssignsDistinctIDs(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, f.alice, "a", "2023-03-18 10:00:00", true)
	b := f.create(t, f.alice, "b", "2023-03-18 11:00:00", true)
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestCreateUsesInjectedIDGenerator(t *testing.T) {
	f := newFixture(t)
	ids := []string{"meal-1", "meal-2"}
	svc := NewService(f.store, datefmt.New(time.UTC), zap.NewNop(),
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}),
	)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, f.alice, models.MealInput{Name: "lunch", Date: "2023-03-18 10:40:25", WithinDiet: true}))
	require.NoError(t, svc.Create(ctx, f.alice, models.MealInput{Name: "dinner", Date: "2023-03-18 18:40:25"}))

	view, err := svc.GetOne(ctx, f.alice, "meal-2")
	require.NoError(t, err)
	assert.Equal(t, "dinner", view.Name)
	assert.Empty(t, ids)
}

func TestCreateRejectsSubSecondDate(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Create(context.Background(), f.alice, models.MealInput{Name: "lunch", Date: "2023-03-18 10:40:25.999"})
	require.ErrorIs(t, err, models.ErrValidation)

	views, err := f.svc.List(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestGetOne(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, f.alice, "lunch", "2023-03-18 10:40:25", true)

	view, err := f.svc.GetOne(context.Background(), f.alice, id)
	require.NoError(t, err)
	assert.Equal(t, "lunch", view.Name)
	assert.Equal(t, "2023-03-18 10:40:25", view.Date)
	assert.True(t, view.WithinDiet)
}

func TestOwnershipIsEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, f.alice, "lunch", "2023-03-18 10:40:25", true)

	_, err := f.svc.GetOne(ctx, f.bob, id)
	assert.True(t, errors.Is(err, models.ErrForbidden), "get: %v", err)

	err = f.svc.Update(ctx, f.bob, id, models.MealPatch{Name: "stolen"})
	assert.True(t, errors.Is(err, models.ErrForbidden), "update: %v", err)

	err = f.svc.Delete(ctx, f.bob, id)
	assert.True(t, errors.Is(err, models.ErrForbidden), "delete: %v", err)

	view, err := f.svc.GetOne(ctx, f.alice, id)
	require.NoError(t, err)
	assert.Equal(t, "lunch", view.Name)
}

func TestMissingMealIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	missing := uuid.NewString()

	_, err := f.svc.GetOne(ctx, f.alice, missing)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.True(t, errors.Is(f.svc.Update(ctx, f.alice, missing, models.MealPatch{}), models.ErrNotFound))
	assert.True(t, errors.Is(f.svc.Delete(ctx, f.alice, missing), models.ErrNotFound))
}

func TestUpdateExplicitFalseOverwritesTrue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, f.alice, "lunch", "2023-03-18 10:40:25", true)

	off := false
	require.NoError(t, f.svc.Update(ctx, f.alice, id, models.MealPatch{WithinDiet: &off}))

	view, err := f.svc.GetOne(ctx, f.alice, id)
	require.NoError(t, err)
	assert.False(t, view.WithinDiet)
}

func TestUpdateAbsentFieldsRetainStoredValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, f.alice, "lunch", "2023-03-18 10:40:25", true)

	require.NoError(t, f.svc.Update(ctx, f.alice, id, models.MealPatch{}))

	view, err := f.svc.GetOne(ctx, f.alice, id)
	require.NoError(t, err)
	assert.Equal(t, "lunch", view.Name)
	assert.Equal(t, "lunch at home", view.Description)
	assert.Equal(t, "2023-03-18 10:40:25", view.Date)
	assert.True(t, view.WithinDiet)
	require.NotNil(t, view.UpdatedAt)
	assert.Equal(t, "2023-03-20 12:00:00", *view.UpdatedAt)
}

func TestUpdateReplacesSuppliedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, f.alice, "lunch", "2023-03-18 10:40:25", false)

	on := true
	f.now = f.now.Add(time.Hour)
	require.NoError(t, f.svc.Update(ctx, f.alice, id, models.MealPatch{
		Name:        "late lunch",
		Description: "salad",
		Date:        "2023-03-18 14:05:00",
		WithinDiet:  &on,
	}))

	view, err := f.svc.GetOne(ctx, f.alice, id)
	require.NoError(t, err)
	assert.Equal(t, "late lunch", view.Name)
	assert.Equal(t, "salad", view.Description)
	assert.Equal(t, "2023-03-18 14:05:00", view.Date)
	assert.True(t, view.WithinDiet)
	require.NotNil(t, view.UpdatedAt)
	assert.Equal(t, "2023-03-20 13:00:00", *view.UpdatedAt)
}

func TestUpdateRejectsMalformedDate(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, f.alice, "lunch", "2023-03-18 10:40:25", true)

	err := f.svc.Update(context.Background(), f.alice, id, models.MealPatch{Date: "soon"})
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, f.alice, "lunch", "2023-03-18 10:40:25", true)

	require.NoError(t, f.svc.Delete(ctx, f.alice, id))

	_, err := f.svc.GetOne(ctx, f.alice, id)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.True(t, errors.Is(f.svc.Delete(ctx, f.alice, id), models.ErrNotFound))
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.Metrics(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, models.DietMetrics{}, empty)

	// inserted out of order; the streak is computed over time order
	f.create(t, f.alice, "m5", "2023-03-19 10:00:00", true)
	f.create(t, f.alice, "m1", "2023-03-18 07:00:00", true)
	f.create(t, f.alice, "m8", "2023-03-20 10:00:00", false)
	f.create(t, f.alice, "m3", "2023-03-18 18:00:00", false)
	f.create(t, f.alice, "m2", "2023-03-18 12:00:00", true)
	f.create(t, f.alice, "m7", "2023-03-19 18:00:00", true)
	f.create(t, f.alice, "m4", "2023-03-19 07:00:00", false)
	f.create(t, f.alice, "m6", "2023-03-19 12:00:00", true)

	got, err := f.svc.Metrics(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, models.DietMetrics{
		MealsAmount:                   8,
		MealsAmountWithinDiet:         5,
		MealsAmountWithoutDiet:        3,
		BestSequenceOfMealsWithinDiet: 3,
	}, got)

	other, err := f.svc.Metrics(ctx, f.bob)
	require.NoError(t, err)
	assert.Equal(t, models.DietMetrics{}, other)
}
