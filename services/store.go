package services

import (
	"context"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
)

// SwissStore is the persistence the pairing and result workflows rely on.
// repositories.SwissStore implements it over SQL.
type SwissStore interface {
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	GetStandings(ctx context.Context, tournamentID int) ([]models.StandingsRow, error)
	GetPriorPairings(ctx context.Context, tournamentID int) ([]models.PlayerPair, error)
	GetByes(ctx context.Context, tournamentID int) ([]models.Bye, error)
	CurrentRound(ctx context.Context, tournamentID int) (int, error)
	CountPendingMatches(ctx context.Context, tournamentID int) (int, error)
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID int, round *int) ([]*models.Match, error)

	RecordMatch(ctx context.Context, tournamentID, player1ID, player2ID, round int) (int, error)
	RecordRound(ctx context.Context, tournamentID, round int, pairs []models.PlayerPair, byePlayerID *int) ([]*models.Match, error)
	RecordResult(ctx context.Context, matchID, winnerID, loserID int, isDraw bool) error
	DeleteMatches(ctx context.Context, tournamentID int) (int64, error)
}

var _ SwissStore = (*repositories.SwissStore)(nil)

// Broadcaster delivers an event to every subscriber of a room.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToRoom(string, interface{}) {}
