package routehandlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/coreybb/dietlog/datefmt"
	"github.com/coreybb/dietlog/meals"
	"github.com/coreybb/dietlog/models"
	"github.com/coreybb/dietlog/webutil"
)

// MealIDParam is the path parameter naming a meal.
const MealIDParam = "meal_id"

type MealHandler struct {
	Meals *meals.Service
	Dates *datefmt.Normalizer
}

func NewMealHandler(svc *meals.Service, dates *datefmt.Normalizer) *MealHandler {
	return &MealHandler{Meals: svc, Dates: dates}
}

type createMealRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Date             string `json:"date"`
	ItsWithinTheDiet *bool  `json:"itsWithinTheDiet"`
}

// updateMealRequest mirrors createMealRequest with every field optional.
// ItsWithinTheDiet stays a pointer so an explicit false is distinguishable from absence.
type updateMealRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Date             string `json:"date"`
	ItsWithinTheDiet *bool  `json:"itsWithinTheDiet"`
}

func (h *MealHandler) HandleCreateMeal(w http.ResponseWriter, r *http.Request) error {
	user, err := sessionUser(r)
	if err != nil {
		return err
	}

	var req createMealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Name) == "" {
		return webutil.ErrBadRequest("Meal name is required")
	}
	if !h.Dates.Valid(req.Date) {
		return webutil.ErrBadRequest("Date is required in the format YYYY-MM-DD HH:MM:SS")
	}
	if req.ItsWithinTheDiet == nil {
		return webutil.ErrBadRequest("itsWithinTheDiet is required")
	}

	err = h.Meals.Create(r.Context(), user, models.MealInput{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		WithinDiet:  *req.ItsWithinTheDiet,
	})
	if err != nil {
		return err
	}
	webutil.RespondEmpty(w, http.StatusCreated)
	return nil
}

func (h *MealHandler) HandleGetMeals(w http.ResponseWriter, r *http.Request) error {
	user, err := sessionUser(r)
	if err != nil {
		return err
	}
	views, err := h.Meals.List(r.Context(), user)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"userMeals": views})
	return nil
}

// HandleGetMeal wraps the single meal in a one-element list under "meal".
func (h *MealHandler) HandleGetMeal(w http.ResponseWriter, r *http.Request) error {
	user, err := sessionUser(r)
	if err != nil {
		return err
	}
	mealID, err := parseMealID(chi.URLParam(r, MealIDParam))
	if err != nil {
		return err
	}

	view, err := h.Meals.GetOne(r.Context(), user, mealID)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"meal": []models.MealView{view}})
	return nil
}

func (h *MealHandler) HandleUpdateMeal(w http.ResponseWriter, r *http.Request) error {
	user, err := sessionUser(r)
	if err != nil {
		return err
	}
	mealID, err := parseMealID(chi.URLParam(r, MealIDParam))
	if err != nil {
		return err
	}

	var req updateMealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.Date != "" && !h.Dates.Valid(req.Date) {
		return webutil.ErrBadRequest("Date must be in the format YYYY-MM-DD HH:MM:SS")
	}

	err = h.Meals.Update(r.Context(), user, mealID, models.MealPatch{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		WithinDiet:  req.ItsWithinTheDiet,
	})
	if err != nil {
		return err
	}
	webutil.RespondEmpty(w, http.StatusOK)
	return nil
}

func (h *MealHandler) HandleDeleteMeal(w http.ResponseWriter, r *http.Request) error {
	user, err := sessionUser(r)
	if err != nil {
		return err
	}
	mealID, err := parseMealID(chi.URLParam(r, MealIDParam))
	if err != nil {
		return err
	}

	if err := h.Meals.Delete(r.Context(), user, mealID); err != nil {
		return err
	}
	webutil.RespondEmpty(w, http.StatusNoContent)
	return nil
}

func (h *MealHandler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) error {
	user, err := sessionUser(r)
	if err != nil {
		return err
	}
	m, err := h.Meals.Metrics(r.Context(), user)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"response": m})
	return nil
}
