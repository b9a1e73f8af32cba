package routehandlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/coreybb/dietlog/auth"
	"github.com/coreybb/dietlog/models"
	"github.com/coreybb/dietlog/webutil"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return webutil.ErrBadRequestWrap("Invalid request payload: "+err.Error(), err)
	}
	return nil
}

// sessionUser returns the user the session middleware resolved for this request.
func sessionUser(r *http.Request) (models.User, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return models.User{}, webutil.ErrUnauthorized("")
	}
	return user, nil
}

func parseMealID(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", webutil.ErrBadRequest("Invalid meal ID format")
	}
	return id, nil
}
