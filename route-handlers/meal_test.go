package routehandlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coreybb/dietlog/auth"
	"github.com/coreybb/dietlog/datastore"
	"github.com/coreybb/dietlog/datefmt"
	"github.com/coreybb/dietlog/meals"
	"github.com/coreybb/dietlog/models"
	"github.com/coreybb/dietlog/webutil"
)

func newMealHandler(t *testing.T) (*MealHandler, models.User) {
	t.Helper()
	store := datastore.NewMemoryStore()
	user := models.User{ID: uuid.NewString(), Name: "John Doe", CreatedAt: time.Now()}
	require.NoError(t, store.CreateUser(context.Background(), &user))

	dates := datefmt.New(time.UTC)
	return NewMealHandler(meals.NewService(store, dates, zap.NewNop()), dates), user
}

func serve(h webutil.AppHandler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	webutil.MakeHandler(zap.NewNop(), h)(rec, req)
	return rec
}

func withMealID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(MealIDParam, id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandlersRequireResolvedUser(t *testing.T) {
	h, _ := newMealHandler(t)
	rec := serve(h.HandleGetMeals, httptest.NewRequest(http.MethodGet, "/meals", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleCreateMealThenGet(t *testing.T) {
	h, user := newMealHandler(t)

	body := `{"name":"lunch","description":"lunch at home","date":"2023-03-18 10:40:25","itsWithinTheDiet":false}`
	req := httptest.NewRequest(http.MethodPost, "/meals", strings.NewReader(body))
	req = req.WithContext(auth.WithUser(req.Context(), user))
	rec := serve(h.HandleCreateMeal, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Body.String())

	views, err := h.Meals.List(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].WithinDiet)

	req = withMealID(httptest.NewRequest(http.MethodGet, "/meals/"+views[0].ID, nil), views[0].ID)
	req = req.WithContext(auth.WithUser(req.Context(), user))
	rec = serve(h.HandleGetMeal, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"meal":[{`)
	assert.Contains(t, rec.Body.String(), `"date":"2023-03-18 10:40:25"`)
}

func TestHandleGetMealRejectsMalformedID(t *testing.T) {
	h, user := newMealHandler(t)
	req := withMealID(httptest.NewRequest(http.MethodGet, "/meals/x", nil), "x")
	req = req.WithContext(auth.WithUser(req.Context(), user))

	rec := serve(h.HandleGetMeal, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateMealRejectsMalformedJSON(t *testing.T) {
	h, user := newMealHandler(t)
	id := uuid.NewString()
	req := withMealID(httptest.NewRequest(http.MethodPut, "/meals/"+id, strings.NewReader(`{"name":`)), id)
	req = req.WithContext(auth.WithUser(req.Context(), user))

	rec := serve(h.HandleUpdateMeal, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
