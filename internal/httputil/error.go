package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func InternalServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg(msg)
	WriteJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func BadRequest(w http.ResponseWriter, r *http.Request, msg string, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Msg(msg)
	WriteJSON(w, r, http.StatusBadRequest, errorResponse{Error: msg})
}

func NotFound(w http.ResponseWriter, r *http.Request, msg string, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Msg(msg)
	WriteJSON(w, r, http.StatusNotFound, errorResponse{Error: msg})
}

func UnprocessableEntity(w http.ResponseWriter, r *http.Request, msg string, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Msg(msg)
	WriteJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: msg})
}

func Conflict(w http.ResponseWriter, r *http.Request, msg string, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Msg(msg)
	WriteJSON(w, r, http.StatusConflict, errorResponse{Error: msg})
}
