package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerNameInvalid = errors.New("player name is invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type sqlPlayerRepository struct {
	db *sql.DB
}

func NewPlayerRepository(db *sql.DB) PlayerRepository {
	return &sqlPlayerRepository{db: db}
}

func (r *sqlPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `INSERT INTO players (name) VALUES ($1) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, player.Name).Scan(&player.ID)
	if err != nil {
		if classifyConstraint(err) == constraintCheck {
			return ErrPlayerNameInvalid
		}
		return fmt.Errorf("failed to create player: %w", err)
	}

	// created_at is filled by the database default; read it back in a
	// separate query so the value is typed by the column declaration.
	created, err := r.GetByID(ctx, player.ID)
	if err != nil {
		return fmt.Errorf("failed to reload player %d: %w", player.ID, err)
	}
	player.CreatedAt = created.CreatedAt
	return nil
}

func (r *sqlPlayerRepository) scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	if err := row.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *sqlPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, name, created_at FROM players WHERE id = $1`
	p, err := r.scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return p, nil
}

func (r *sqlPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT id, name, created_at FROM players ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, scanErr := r.scanPlayer(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *sqlPlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(id) FROM players`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// DeleteAll removes every player. Registrations, matches, results and byes
// go with them through ON DELETE CASCADE.
func (r *sqlPlayerRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete players: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n, nil
}
