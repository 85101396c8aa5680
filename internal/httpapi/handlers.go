package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cory-johannsen/fightbook/internal/arena"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
)

// fighterResponse is the wire shape of a roster entry.
type fighterResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	WinCount  int            `json:"win_count"`
	Stats     map[string]any `json:"stats"`
	Metadata  map[string]any `json:"metadata"`
	Record    fighter.Record `json:"record"`
	CreatedAt time.Time      `json:"created_at"`
}

func toFighterResponse(f arena.Fighter) fighterResponse {
	return fighterResponse{
		ID:        f.ID,
		Name:      f.Name,
		WinCount:  f.WinCount(),
		Stats:     f.Stats,
		Metadata:  f.Metadata,
		Record:    f.Record,
		CreatedAt: f.CreatedAt,
	}
}

type registerRequest struct {
	Name     *string        `json:"name"`
	Stats    map[string]any `json:"stats"`
	Metadata map[string]any `json:"metadata"`
}

type deleteRequest struct {
	ID string `json:"id"`
}

type fightRequest struct {
	Fighter1ID string `json:"fighter1_id"`
	Fighter2ID string `json:"fighter2_id"`
}

// fightResponse is the wire shape of a stored fight. WinnerID is null on a draw.
type fightResponse struct {
	ID        string    `json:"id"`
	Fighter1  string    `json:"fighter1"`
	Fighter2  string    `json:"fighter2"`
	Winner    string    `json:"winner"`
	WinnerID  *string   `json:"winner_id"`
	Method    string    `json:"method"`
	Round     int       `json:"round"`
	FightLog  []string  `json:"fight_log"`
	CreatedAt time.Time `json:"created_at"`
}

func toFightResponse(f arena.Fight) fightResponse {
	resp := fightResponse{
		ID:        f.ID,
		Fighter1:  f.Fighter1,
		Fighter2:  f.Fighter2,
		Winner:    f.Winner,
		Method:    f.Method,
		Round:     f.Round,
		FightLog:  f.Log,
		CreatedAt: f.CreatedAt,
	}
	if f.WinnerID != "" {
		id := f.WinnerID
		resp.WinnerID = &id
	}
	return resp
}

func (s *Server) handleFighters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listFighters(w, r)
	case http.MethodPost:
		s.registerFighter(w, r)
	case http.MethodDelete:
		s.deleteFighter(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	}
}

func (s *Server) listFighters(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		f, err := s.arena.Fighter(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toFighterResponse(f))
		return
	}

	list, err := s.arena.Fighters(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]fighterResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFighterResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) registerFighter(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	f, err := s.arena.RegisterFighter(r.Context(), requester(r), *req.Name, req.Stats, req.Metadata)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFighterResponse(f))
}

func (s *Server) deleteFighter(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := s.arena.DeleteFighter(r.Context(), bearerToken(r), req.ID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": req.ID})
}

func (s *Server) handleFights(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listFights(w, r)
	case http.MethodPost:
		s.startFight(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	}
}

func (s *Server) listFights(w http.ResponseWriter, r *http.Request) {
	// An unparsable limit falls back to the default, as zero does.
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	fights, err := s.arena.RecentFights(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]fightResponse, 0, len(fights))
	for _, f := range fights {
		out = append(out, toFightResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) startFight(w http.ResponseWriter, r *http.Request) {
	var req fightRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	fight, err := s.arena.StartFight(r.Context(), requester(r), req.Fighter1ID, req.Fighter2ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFightResponse(fight))
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}
	board, err := s.arena.Leaderboard(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}
