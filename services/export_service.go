package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/storage"
)

type ExportService interface {
	ExportStandings(ctx context.Context, tournamentID int) (*StandingsExport, error)
}

type StandingsExport struct {
	TournamentID int    `json:"tournament_id"`
	Round        int    `json:"round"`
	Key          string `json:"key"`
	URL          string `json:"url"`
}

type exportService struct {
	store     SwissStore
	standings StandingsService
	uploader  storage.FileUploader
	logger    *slog.Logger
}

// NewExportService returns a service that refuses every export when uploader
// is nil.
func NewExportService(store SwissStore, standings StandingsService, uploader storage.FileUploader, logger *slog.Logger) ExportService {
	return &exportService{
		store:     store,
		standings: standings,
		uploader:  uploader,
		logger:    logger,
	}
}

func standingsKey(tournamentID, round int) string {
	return fmt.Sprintf("tournaments/%d/standings/round-%03d.csv", tournamentID, round)
}

func (s *exportService) ExportStandings(ctx context.Context, tournamentID int) (*StandingsExport, error) {
	if s.uploader == nil {
		return nil, ErrExportDisabled
	}

	rows, err := s.standings.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	round, err := s.store.CurrentRound(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current round of tournament %d: %w", tournamentID, err)
	}

	data, err := renderStandingsCSV(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to render standings: %w", err)
	}

	key := standingsKey(tournamentID, round)
	res, err := s.uploader.Upload(ctx, key, "text/csv", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: upload %s: %w", ErrPersistenceFailure, key, err)
	}

	s.logger.InfoContext(ctx, "standings exported", slog.Int("tournament_id", tournamentID), slog.String("key", res.Key))
	return &StandingsExport{
		TournamentID: tournamentID,
		Round:        round,
		Key:          res.Key,
		URL:          res.Location,
	}, nil
}

func renderStandingsCSV(rows []models.StandingsRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"rank", "player_id", "name", "wins", "draws", "losses", "byes", "matches_played"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i, r := range rows {
		record := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.PlayerID),
			r.Name,
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Draws),
			strconv.Itoa(r.Losses),
			strconv.Itoa(r.Byes),
			strconv.Itoa(r.MatchesPlayed),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
