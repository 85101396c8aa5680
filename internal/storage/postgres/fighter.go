package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/fightbook/internal/arena"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
)

const fighterColumns = `id, name, stats, metadata, record, created_at`

// FighterRepository persists the roster. It implements arena.FighterStore.
type FighterRepository struct {
	db *pgxpool.Pool
}

// NewFighterRepository creates a FighterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewFighterRepository(db *pgxpool.Pool) *FighterRepository {
	return &FighterRepository{db: db}
}

// Create inserts a new fighter with a fresh career record.
//
// Precondition: name is sanitised; stats are validated.
// Postcondition: Returns the created Fighter with ID and CreatedAt set,
// or arena.ErrFighterNameTaken if the name is registered in any case.
func (r *FighterRepository) Create(ctx context.Context, name string, stats, metadata map[string]any) (arena.Fighter, error) {
	if stats == nil {
		stats = map[string]any{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO fighters (id, name, stats, metadata, win_count, record)
		 VALUES ($1, $2, $3, $4, 0, $5)
		 RETURNING `+fighterColumns,
		uuid.NewString(), name, stats, metadata, fighter.NewRecord(),
	)
	f, err := scanFighter(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return arena.Fighter{}, arena.ErrFighterNameTaken
		}
		return arena.Fighter{}, fmt.Errorf("inserting fighter: %w", err)
	}
	return f, nil
}

// Get retrieves a fighter by id.
//
// Postcondition: Returns the Fighter or arena.ErrFighterNotFound.
func (r *FighterRepository) Get(ctx context.Context, id string) (arena.Fighter, error) {
	f, err := scanFighter(r.db.QueryRow(ctx,
		`SELECT `+fighterColumns+` FROM fighters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return arena.Fighter{}, arena.ErrFighterNotFound
		}
		return arena.Fighter{}, fmt.Errorf("querying fighter: %w", err)
	}
	return f, nil
}

// FindByName retrieves a fighter by name, compared case-insensitively.
//
// Postcondition: Returns the Fighter or arena.ErrFighterNotFound.
func (r *FighterRepository) FindByName(ctx context.Context, name string) (arena.Fighter, error) {
	f, err := scanFighter(r.db.QueryRow(ctx,
		`SELECT `+fighterColumns+` FROM fighters WHERE LOWER(name) = LOWER($1)`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return arena.Fighter{}, arena.ErrFighterNotFound
		}
		return arena.Fighter{}, fmt.Errorf("querying fighter by name: %w", err)
	}
	return f, nil
}

// List returns up to limit fighters, most wins first.
//
// Precondition: limit > 0.
func (r *FighterRepository) List(ctx context.Context, limit int) ([]arena.Fighter, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+fighterColumns+` FROM fighters
		 ORDER BY win_count DESC, created_at ASC, id ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing fighters: %w", err)
	}
	defer rows.Close()

	var out []arena.Fighter
	for rows.Next() {
		f, err := scanFighter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning fighter: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fighters: %w", err)
	}
	return out, nil
}

// Delete removes a fighter. Past fights keep their stored names.
//
// Postcondition: Returns nil or arena.ErrFighterNotFound.
func (r *FighterRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM fighters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting fighter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return arena.ErrFighterNotFound
	}
	return nil
}

// Clear removes every fighter and returns the number removed.
func (r *FighterRepository) Clear(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM fighters`)
	if err != nil {
		return 0, fmt.Errorf("clearing roster: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ApplyResult folds one match outcome into a fighter's career record inside
// a transaction holding the row lock.
//
// Postcondition: Returns the updated Record or arena.ErrFighterNotFound.
func (r *FighterRepository) ApplyResult(ctx context.Context, id string, outcome fighter.Outcome, method string) (fighter.Record, error) {
	var rec fighter.Record
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`SELECT record FROM fighters WHERE id = $1 FOR UPDATE`, id,
		).Scan(&rec); err != nil {
			return err
		}
		rec = rec.Apply(outcome, method)
		_, err := tx.Exec(ctx,
			`UPDATE fighters SET record = $2, win_count = $3 WHERE id = $1`,
			id, rec, rec.Wins,
		)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fighter.Record{}, arena.ErrFighterNotFound
		}
		return fighter.Record{}, fmt.Errorf("applying result: %w", err)
	}
	return rec, nil
}

func scanFighter(row pgx.Row) (arena.Fighter, error) {
	var (
		f         arena.Fighter
		createdAt time.Time
	)
	if err := row.Scan(&f.ID, &f.Name, &f.Stats, &f.Metadata, &f.Record, &createdAt); err != nil {
		return arena.Fighter{}, err
	}
	f.CreatedAt = createdAt.UTC()
	return f, nil
}
