package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

var ErrByeConflict = errors.New("a bye is already recorded for this round")

type ByeRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bye *models.Bye) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Bye, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type sqlByeRepository struct {
	db *sql.DB
}

func NewByeRepository(db *sql.DB) ByeRepository {
	return &sqlByeRepository{db: db}
}

func (r *sqlByeRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlByeRepository) Create(ctx context.Context, exec SQLExecutor, bye *models.Bye) error {
	query := `INSERT INTO byes (tournament_id, round, player_id) VALUES ($1, $2, $3)`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, bye.TournamentID, bye.Round, bye.PlayerID); err != nil {
		switch classifyConstraint(err) {
		case constraintUnique:
			return ErrByeConflict
		case constraintForeignKey:
			return ErrMatchInvalid
		}
		return fmt.Errorf("failed to record bye for player %d: %w", bye.PlayerID, err)
	}
	return nil
}

func (r *sqlByeRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Bye, error) {
	query := `SELECT tournament_id, round, player_id FROM byes WHERE tournament_id = $1 ORDER BY round ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query byes of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	byes := make([]models.Bye, 0)
	for rows.Next() {
		var b models.Bye
		if scanErr := rows.Scan(&b.TournamentID, &b.Round, &b.PlayerID); scanErr != nil {
			return nil, fmt.Errorf("failed to scan bye row: %w", scanErr)
		}
		byes = append(byes, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bye rows iteration: %w", err)
	}
	return byes, nil
}

func (r *sqlByeRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM byes WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete byes of tournament %d: %w", tournamentID, err)
	}
	return nil
}
