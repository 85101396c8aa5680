package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/fightbook/internal/arena"
)

// fightData is the JSONB payload stored with each fight.
type fightData struct {
	Fighter1    string   `json:"fighter1"`
	Fighter2    string   `json:"fighter2"`
	Winner      string   `json:"winner"`
	Method      string   `json:"method"`
	Log         []string `json:"log"`
	RequesterIP string   `json:"requester_ip"`
}

// FightRepository persists match history. It implements arena.FightStore.
type FightRepository struct {
	db *pgxpool.Pool
}

// NewFightRepository creates a FightRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewFightRepository(db *pgxpool.Pool) *FightRepository {
	return &FightRepository{db: db}
}

// Insert stores a fight.
//
// Postcondition: Returns f with ID and CreatedAt set.
func (r *FightRepository) Insert(ctx context.Context, f arena.Fight) (arena.Fight, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	var winnerID *string
	if f.WinnerID != "" {
		winnerID = &f.WinnerID
	}
	data := fightData{
		Fighter1:    f.Fighter1,
		Fighter2:    f.Fighter2,
		Winner:      f.Winner,
		Method:      f.Method,
		Log:         f.Log,
		RequesterIP: f.Requester,
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO fights (id, agent1_id, agent2_id, winner_id, method, round, fight_data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.Fighter1ID, f.Fighter2ID, winnerID, f.Method, f.Round, data, f.CreatedAt,
	)
	if err != nil {
		return arena.Fight{}, fmt.Errorf("inserting fight: %w", err)
	}
	return f, nil
}

// Recent returns up to limit fights, newest first.
//
// Precondition: limit > 0.
func (r *FightRepository) Recent(ctx context.Context, limit int) ([]arena.Fight, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, agent1_id, agent2_id, winner_id, method, round, fight_data, created_at
		 FROM fights
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing fights: %w", err)
	}
	defer rows.Close()

	var out []arena.Fight
	for rows.Next() {
		f, err := scanFight(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning fight: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fights: %w", err)
	}
	return out, nil
}

// CountByRequesterSince counts fights started by requester at or after since.
func (r *FightRepository) CountByRequesterSince(ctx context.Context, requester string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM fights
		 WHERE fight_data->>'requester_ip' = $1 AND created_at >= $2`,
		requester, since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting fights: %w", err)
	}
	return n, nil
}

func scanFight(row pgx.Row) (arena.Fight, error) {
	var (
		f        arena.Fight
		winnerID *string
		data     fightData
	)
	if err := row.Scan(&f.ID, &f.Fighter1ID, &f.Fighter2ID, &winnerID, &f.Method, &f.Round, &data, &f.CreatedAt); err != nil {
		return arena.Fight{}, err
	}
	if winnerID != nil {
		f.WinnerID = *winnerID
	}
	f.Fighter1 = data.Fighter1
	f.Fighter2 = data.Fighter2
	f.Winner = data.Winner
	f.Log = data.Log
	f.Requester = data.RequesterIP
	f.CreatedAt = f.CreatedAt.UTC()
	return f, nil
}
