package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

var (
	ErrTournamentNotFound    = errors.New("tournament not found")
	ErrTournamentNameInvalid = errors.New("tournament name is invalid")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Latest(ctx context.Context) (*models.Tournament, error)
}

type sqlTournamentRepository struct {
	db *sql.DB
}

func NewTournamentRepository(db *sql.DB) TournamentRepository {
	return &sqlTournamentRepository{db: db}
}

func (r *sqlTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `INSERT INTO tournaments (name) VALUES ($1) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, t.Name).Scan(&t.ID); err != nil {
		if classifyConstraint(err) == constraintCheck {
			return ErrTournamentNameInvalid
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}

	created, err := r.GetByID(ctx, nil, t.ID)
	if err != nil {
		return fmt.Errorf("failed to reload tournament %d: %w", t.ID, err)
	}
	t.CreatedAt = created.CreatedAt
	return nil
}

func (r *sqlTournamentRepository) scanTournament(row rowScanner) (*models.Tournament, error) {
	var t models.Tournament
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *sqlTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT id, name, created_at FROM tournaments WHERE id = $1`
	return r.scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *sqlTournamentRepository) Latest(ctx context.Context) (*models.Tournament, error) {
	query := `SELECT id, name, created_at FROM tournaments ORDER BY id DESC LIMIT 1`
	return r.scanTournament(r.db.QueryRowContext(ctx, query))
}

func (r *sqlTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM tournaments ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := r.scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}
