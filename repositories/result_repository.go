package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

var (
	ErrResultConflict = errors.New("result already recorded for this player and match")
	ErrResultInvalid  = errors.New("result references an unknown match or player")
)

type ResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.MatchResult) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.MatchResult, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int][]models.MatchResult, error)
}

type sqlResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) ResultRepository {
	return &sqlResultRepository{db: db}
}

func (r *sqlResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlResultRepository) Create(ctx context.Context, exec SQLExecutor, result *models.MatchResult) error {
	query := `INSERT INTO match_results (match_id, player_id, outcome) VALUES ($1, $2, $3)`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, result.MatchID, result.PlayerID, string(result.Outcome))
	if err != nil {
		switch classifyConstraint(err) {
		case constraintUnique:
			return ErrResultConflict
		case constraintForeignKey, constraintCheck:
			return ErrResultInvalid
		}
		return fmt.Errorf("failed to insert result for match %d player %d: %w", result.MatchID, result.PlayerID, err)
	}
	return nil
}

func (r *sqlResultRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.MatchResult, error) {
	query := `SELECT match_id, player_id, outcome FROM match_results WHERE match_id = $1 ORDER BY player_id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results of match %d: %w", matchID, err)
	}
	defer rows.Close()

	results := make([]models.MatchResult, 0, 2)
	for rows.Next() {
		var res models.MatchResult
		if scanErr := rows.Scan(&res.MatchID, &res.PlayerID, &res.Outcome); scanErr != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", scanErr)
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during result rows iteration: %w", err)
	}
	return results, nil
}

// ListByTournament returns results grouped by match id.
func (r *sqlResultRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int][]models.MatchResult, error) {
	query := `
		SELECT mr.match_id, mr.player_id, mr.outcome
		FROM match_results mr
		JOIN matches m ON m.id = mr.match_id
		WHERE m.tournament_id = $1
		ORDER BY mr.match_id ASC, mr.player_id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	byMatch := make(map[int][]models.MatchResult)
	for rows.Next() {
		var res models.MatchResult
		if scanErr := rows.Scan(&res.MatchID, &res.PlayerID, &res.Outcome); scanErr != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", scanErr)
		}
		byMatch[res.MatchID] = append(byMatch[res.MatchID], res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during result rows iteration: %w", err)
	}
	return byMatch, nil
}
