package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

type StandingRepository interface {
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.StandingsRow, error)
}

type sqlStandingRepository struct {
	db *sql.DB
}

func NewStandingRepository(db *sql.DB) StandingRepository {
	return &sqlStandingRepository{db: db}
}

func (r *sqlStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByTournament reads the tournament_standings view ranked by wins, then
// fewer draws, then player id so ties keep a stable order.
func (r *sqlStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.StandingsRow, error) {
	query := `
		SELECT player_id, name, wins, draws, losses, byes, matches_played
		FROM tournament_standings
		WHERE tournament_id = $1
		ORDER BY wins DESC, draws ASC, player_id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	standings := make([]models.StandingsRow, 0)
	for rows.Next() {
		var s models.StandingsRow
		if scanErr := rows.Scan(&s.PlayerID, &s.Name, &s.Wins, &s.Draws, &s.Losses, &s.Byes, &s.MatchesPlayed); scanErr != nil {
			return nil, fmt.Errorf("failed to scan standings row: %w", scanErr)
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during standings rows iteration: %w", err)
	}
	return standings, nil
}
