package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fightbook/internal/arena"
	"github.com/cory-johannsen/fightbook/internal/game/combat"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
)

type errorResponse struct {
	Error      string   `json:"error"`
	Details    []string `json:"details,omitempty"`
	RetryAfter int      `json:"retryAfter,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details []string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// writeServiceError maps arena errors onto status codes and JSON bodies.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var (
		verr  *fighter.ValidationError
		rl    *arena.RateLimitError
		taken *arena.NameTakenError
		slot  *arena.SlotError
	)
	switch {
	case errors.As(err, &rl):
		body := errorResponse{Error: rl.Message}
		if rl.RetryAfter > 0 {
			secs := int(math.Ceil(rl.RetryAfter.Seconds()))
			body.RetryAfter = secs
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
		writeJSON(w, http.StatusTooManyRequests, body)
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message, verr.Details)
	case errors.As(err, &taken):
		writeError(w, http.StatusConflict, taken.Error(), nil)
	case errors.As(err, &slot) && errors.Is(err, arena.ErrFighterNotFound):
		writeError(w, http.StatusNotFound, slot.Error(), nil)
	case errors.Is(err, arena.ErrFighterNotFound):
		writeError(w, http.StatusNotFound, "Fighter not found", nil)
	case errors.Is(err, arena.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
	case errors.Is(err, arena.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, requestMessage(err), nil)
	case errors.Is(err, combat.ErrInvalidInvocation):
		writeError(w, http.StatusBadRequest, "A fighter cannot fight itself", nil)
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
	}
}

// requestMessage strips the sentinel suffix from "<message>: invalid request".
func requestMessage(err error) string {
	return strings.TrimSuffix(err.Error(), ": "+arena.ErrInvalidRequest.Error())
}
