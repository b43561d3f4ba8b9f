package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/swiss-tournament/models"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchInvalid        = errors.New("match references an unknown player or tournament")
	ErrMatchPlayersInvalid = errors.New("match players must be two different players")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, round *int) ([]*models.Match, error)
	ListPairs(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.PlayerPair, error)
	HasMet(ctx context.Context, exec SQLExecutor, tournamentID, playerA, playerB int) (bool, error)
	IsScheduled(ctx context.Context, exec SQLExecutor, tournamentID, round, playerID int) (bool, error)
	MaxRound(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	CountUnreported(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error)
}

type sqlMatchRepository struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) MatchRepository {
	return &sqlMatchRepository{db: db}
}

func (r *sqlMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, round, player1_id, player2_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	executor := r.getExecutor(exec)
	err := executor.QueryRowContext(ctx, query,
		match.TournamentID,
		match.Round,
		match.Player1ID,
		match.Player2ID,
	).Scan(&match.ID)
	if err != nil {
		return r.handleMatchError(err)
	}

	stored, err := r.GetByID(ctx, executor, match.ID)
	if err != nil {
		return fmt.Errorf("failed to reload match %d: %w", match.ID, err)
	}
	match.CreatedAt = stored.CreatedAt
	return nil
}

func (r *sqlMatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	err := row.Scan(&m.ID, &m.TournamentID, &m.Round, &m.Player1ID, &m.Player2ID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *sqlMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `
		SELECT id, tournament_id, round, player1_id, player2_id, created_at
		FROM matches
		WHERE id = $1`

	m, err := r.scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return m, nil
}

func (r *sqlMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, roundFilter *int) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, tournament_id, round, player1_id, player2_id, created_at
		FROM matches
		WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if roundFilter != nil {
		queryBuilder.WriteString(" AND round = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *roundFilter)
	}
	queryBuilder.WriteString(" ORDER BY round ASC, id ASC")

	rows, err := r.getExecutor(exec).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *sqlMatchRepository) ListPairs(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.PlayerPair, error) {
	query := `SELECT player1_id, player2_id FROM matches WHERE tournament_id = $1 ORDER BY id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query prior pairings for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	pairs := make([]models.PlayerPair, 0)
	for rows.Next() {
		var p models.PlayerPair
		if scanErr := rows.Scan(&p.Player1ID, &p.Player2ID); scanErr != nil {
			return nil, fmt.Errorf("failed to scan pairing row: %w", scanErr)
		}
		pairs = append(pairs, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pairing rows iteration: %w", err)
	}
	return pairs, nil
}

// HasMet reports whether the two players already have a match in the
// tournament, in either seat order.
func (r *sqlMatchRepository) HasMet(ctx context.Context, exec SQLExecutor, tournamentID, playerA, playerB int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE tournament_id = $1
			  AND ((player1_id = $2 AND player2_id = $3) OR (player1_id = $3 AND player2_id = $2))
		)`
	var met bool
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, playerA, playerB).Scan(&met); err != nil {
		return false, fmt.Errorf("failed to check prior meeting of %d and %d: %w", playerA, playerB, err)
	}
	return met, nil
}

// IsScheduled reports whether the player already has a match or a bye in the
// given round.
func (r *sqlMatchRepository) IsScheduled(ctx context.Context, exec SQLExecutor, tournamentID, round, playerID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE tournament_id = $1 AND round = $2 AND (player1_id = $3 OR player2_id = $3)
			UNION ALL
			SELECT 1 FROM byes
			WHERE tournament_id = $1 AND round = $2 AND player_id = $3
		)`
	var busy bool
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, round, playerID).Scan(&busy); err != nil {
		return false, fmt.Errorf("failed to check schedule of player %d in round %d: %w", playerID, round, err)
	}
	return busy, nil
}

// MaxRound returns the highest round with a match or a bye, 0 before the
// first round.
func (r *sqlMatchRepository) MaxRound(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	query := `
		SELECT COALESCE(MAX(round), 0) FROM (
			SELECT round FROM matches WHERE tournament_id = $1
			UNION ALL
			SELECT round FROM byes WHERE tournament_id = $2
		) rounds`
	var round int
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, tournamentID).Scan(&round); err != nil {
		return 0, fmt.Errorf("failed to get current round for tournament %d: %w", tournamentID, err)
	}
	return round, nil
}

func (r *sqlMatchRepository) CountUnreported(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	query := `
		SELECT COUNT(*) FROM matches m
		WHERE m.tournament_id = $1
		  AND NOT EXISTS (SELECT 1 FROM match_results mr WHERE mr.match_id = m.id)`
	var n int
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unreported matches for tournament %d: %w", tournamentID, err)
	}
	return n, nil
}

// DeleteByTournament removes every match of a tournament; results cascade.
func (r *sqlMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error) {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches of tournament %d: %w", tournamentID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n, nil
}

func (r *sqlMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	switch classifyConstraint(err) {
	case constraintForeignKey:
		return ErrMatchInvalid
	case constraintCheck:
		return ErrMatchPlayersInvalid
	}
	return fmt.Errorf("failed to create match: %w", err)
}
