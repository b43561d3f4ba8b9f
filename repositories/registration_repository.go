package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

var (
	ErrRegistrationConflict = errors.New("player is already registered for this tournament")
	ErrRegistrationInvalid  = errors.New("registration references an unknown player or tournament")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	ListPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Player, error)
	IsRegistered(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (bool, error)
}

type sqlRegistrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &sqlRegistrationRepository{db: db}
}

func (r *sqlRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `INSERT INTO registrations (tournament_id, player_id) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, reg.TournamentID, reg.PlayerID); err != nil {
		switch classifyConstraint(err) {
		case constraintUnique:
			return ErrRegistrationConflict
		case constraintForeignKey:
			return ErrRegistrationInvalid
		}
		return fmt.Errorf("failed to register player %d for tournament %d: %w", reg.PlayerID, reg.TournamentID, err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT created_at FROM registrations WHERE tournament_id = $1 AND player_id = $2`,
		reg.TournamentID, reg.PlayerID)
	if err := row.Scan(&reg.CreatedAt); err != nil {
		return fmt.Errorf("failed to reload registration: %w", err)
	}
	return nil
}

func (r *sqlRegistrationRepository) ListPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Player, error) {
	query := `
		SELECT p.id, p.name, p.created_at
		FROM registrations r
		JOIN players p ON p.id = r.player_id
		WHERE r.tournament_id = $1
		ORDER BY p.id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan registered player row: %w", scanErr)
		}
		players = append(players, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during registered player rows iteration: %w", err)
	}
	return players, nil
}

func (r *sqlRegistrationRepository) IsRegistered(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (bool, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE tournament_id = $1 AND player_id = $2`
	var n int
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, playerID).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return n > 0, nil
}
