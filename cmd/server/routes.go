package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/parklandpickleball/ppl-playoffs/internal/bracket"
	"github.com/parklandpickleball/ppl-playoffs/internal/httputil"
	"github.com/parklandpickleball/ppl-playoffs/internal/middleware"
	"github.com/parklandpickleball/ppl-playoffs/internal/service"
	"github.com/parklandpickleball/ppl-playoffs/internal/store"
	"github.com/parklandpickleball/ppl-playoffs/internal/utils"
)

func newRouter(playoffs *service.PlayoffService) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/seasons/{seasonID}/divisions/{divisionID}", func(r chi.Router) {
		r.Get("/bracket", handleGetBracket(playoffs))
		r.Post("/bracket", handleGenerateBracket(playoffs))
		r.Post("/bracket/regenerate", handleRegenerateBracket(playoffs))
		r.Post("/bracket/matches/{matchID}/winner", handleConfirmWinner(playoffs))
		r.Delete("/bracket/matches/{matchID}/winner", handleUndoWinner(playoffs))
		r.Put("/bracket/matches/{matchID}/slots/{side}", handleOverrideSlot(playoffs))
		r.Post("/seeding/lock", handleLockSeeding(playoffs))
		r.Delete("/seeding/lock", handleUnlockSeeding(playoffs))
	})

	return r
}

type formatPayload struct {
	Format string `json:"format"`
}

type winnerPayload struct {
	TeamID string `json:"teamId"`
}

type slotPayload struct {
	TeamID *string `json:"teamId"`
}

// bracketEnvelope is the mutation response: the new document plus the
// derived status and concurrency token.
type bracketEnvelope struct {
	Bracket   *bracket.Bracket `json:"bracket"`
	Status    bracket.Status   `json:"status"`
	Version   int64            `json:"version"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type seedingResponse struct {
	DivisionID string     `json:"divisionId"`
	Locked     bool       `json:"locked"`
	LockedAt   *time.Time `json:"lockedAt"`
}

func handleGetBracket(playoffs *service.PlayoffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seasonID, divisionID, ok := pathIDs(w, r)
		if !ok {
			return
		}

		view, err := playoffs.View(r.Context(), seasonID, divisionID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, r, http.StatusOK, view)
	}
}

func handleGenerateBracket(playoffs *service.PlayoffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seasonID, divisionID, ok := pathIDs(w, r)
		if !ok {
			return
		}
		format, ok := decodeFormat(w, r)
		if !ok {
			return
		}

		rec, err := playoffs.Generate(r.Context(), seasonID, divisionID, format)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, r, http.StatusCreated, newBracketEnvelope(rec))
	}
}

func handleRegenerateBracket(playoffs *service.PlayoffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seasonID, divisionID, ok := pathIDs(w, r)
		if !ok {
			return
		}
		format, ok := decodeFormat(w, r)
		if !ok {
			return
		}

		rec, err := playoffs.Regenerate(r.Context(), seasonID, divisionID, format)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, r, http.StatusOK, newBracketEnvelope(rec))
	}
}

func handleConfirmWinner(playoffs *service.PlayoffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seasonID, divisionID, ok := pathIDs(w, r)
		if !ok {
			return
		}

		var payload winnerPayload
		if err := decodeJSON(r, &payload); err != nil {
			httputil.BadRequest(w, r, "invalid request body", err)
			return
		}
		teamID := utils.StringOrNil(payload.TeamID)
		if teamID == nil {
			httputil.BadRequest(w, r, "teamId is required", nil)
			return
		}

		rec, err := playoffs.ConfirmWinner(r.Context(), seasonID, divisionID, chi.URLParam(r, "matchID"), bracket.TeamID(*teamID))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, r, http.StatusOK, newBracketEnvelope(rec))
	}
}

func handleUndoWinner(playoffs *service.PlayoffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seasonID, divisionID, ok := pathIDs(w, r)
		if !ok {
			return
		}

		rec, err := playoffs.UndoWinner(r.Context(), seasonID, divisionID, chi.URLParam(r, "matchID"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, r, http.StatusOK, newBracketEnvelope(rec))
	}
}

func handleOverrideSlot(playoffs *service.PlayoffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seasonID, divisionID, ok := pathIDs(w, r)
		if !ok {
			return
		}

		var payload slotPayload
		if err := decodeJSON(r, &payload); err != nil {
			httputil.BadRequest(w, r, "invalid request body", err)
			return
		}

		// A null or empty teamId clears the slot.
		var team *bracket.TeamID
		if payload.TeamID != nil {
			if trimmed := utils.StringOrNil(*payload.TeamID); trimmed != nil {
				team = utils.Ptr(bracket.TeamID(*trimmed))
			}
		}

		rec, err := playoffs.OverrideSlot(r.Context(), seasonID, divisionID, chi.URLParam(r, "matchID"), chi.URLParam(r, "side"), team)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, r, http.StatusOK, newBracketEnvelope(rec))
	}
}

func handleLockSeeding(playoffs *service.PlayoffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seasonID, divisionID, ok := pathIDs(w, r)
		if !ok {
			return
		}

		division, err := playoffs.LockSeeding(r.Context(), seasonID, divisionID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, r, http.StatusOK, seedingResponse{
			DivisionID: division.ID.String(),
			Locked:     division.SeedingLocked(),
			LockedAt:   division.SeedingLockedAt,
		})
	}
}

func handleUnlockSeeding(playoffs *service.PlayoffService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seasonID, divisionID, ok := pathIDs(w, r)
		if !ok {
			return
		}

		division, err := playoffs.UnlockSeeding(r.Context(), seasonID, divisionID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httputil.WriteJSON(w, r, http.StatusOK, seedingResponse{
			DivisionID: division.ID.String(),
			Locked:     division.SeedingLocked(),
			LockedAt:   division.SeedingLockedAt,
		})
	}
}

func newBracketEnvelope(rec *store.BracketRecord) bracketEnvelope {
	return bracketEnvelope{
		Bracket:   rec.Doc,
		Status:    rec.Doc.Status(),
		Version:   rec.Version,
		UpdatedAt: rec.UpdatedAt,
	}
}

// pathIDs pulls the season and division ids out of the URL and rejects
// anything that is not a UUID.
func pathIDs(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	seasonID, err := uuid.Parse(chi.URLParam(r, "seasonID"))
	if err != nil {
		httputil.BadRequest(w, r, "invalid season id", err)
		return uuid.Nil, uuid.Nil, false
	}
	divisionID, err := uuid.Parse(chi.URLParam(r, "divisionID"))
	if err != nil {
		httputil.BadRequest(w, r, "invalid division id", err)
		return uuid.Nil, uuid.Nil, false
	}
	return seasonID, divisionID, true
}

// decodeJSON decodes the request body into v. An empty body is fine; the
// caller's zero values stand in as defaults.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeFormat(w http.ResponseWriter, r *http.Request) (bracket.Format, bool) {
	var payload formatPayload
	if err := decodeJSON(r, &payload); err != nil {
		httputil.BadRequest(w, r, "invalid request body", err)
		return "", false
	}
	if payload.Format == "" {
		return "", true
	}
	format, err := bracket.ParseFormat(payload.Format)
	if err != nil {
		httputil.BadRequest(w, r, err.Error(), err)
		return "", false
	}
	return format, true
}

// writeServiceError maps domain failures onto the API's status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, bracket.ErrMatchNotFound),
		errors.Is(err, bracket.ErrInvalidMatchRef):
		httputil.NotFound(w, r, err.Error(), err)
	case errors.Is(err, bracket.ErrMatchNotReady),
		errors.Is(err, bracket.ErrInvalidWinner),
		errors.Is(err, bracket.ErrNoSeeds),
		errors.Is(err, bracket.ErrNotEnoughSeeds),
		errors.Is(err, service.ErrTooFewTeams):
		httputil.UnprocessableEntity(w, r, err.Error(), err)
	case errors.Is(err, store.ErrBracketExists),
		errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, service.ErrSeedingNotLocked):
		httputil.Conflict(w, r, err.Error(), err)
	case errors.Is(err, bracket.ErrInvalidFormat),
		errors.Is(err, bracket.ErrInvalidSide):
		httputil.BadRequest(w, r, err.Error(), err)
	default:
		httputil.InternalServerError(w, r, "unexpected error", err)
	}
}
