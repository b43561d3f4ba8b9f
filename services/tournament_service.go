package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
)

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)
	LatestTournament(ctx context.Context) (*models.Tournament, error)
	RegisterPlayer(ctx context.Context, tournamentID, playerID int) (*models.Registration, error)
	ListRegisteredPlayers(ctx context.Context, tournamentID int) ([]*models.Player, error)
}

type CreateTournamentInput struct {
	Name string `json:"name"`
}

type tournamentService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	playerRepo       repositories.PlayerRepository
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	playerRepo repositories.PlayerRepository,
) TournamentService {
	return &tournamentService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		playerRepo:       playerRepo,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	tournament := &models.Tournament{Name: name}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameInvalid) {
			return nil, ErrTournamentNameRequired
		}
		return nil, fmt.Errorf("%w: create tournament: %w", ErrPersistenceFailure, err)
	}
	tournament.Players = []models.Player{}
	return tournament, nil
}

// GetTournament loads the tournament together with its registered players.
func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	var (
		tournament *models.Tournament
		players    []*models.Player
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, nil, id)
		if err != nil {
			return err
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		p, err := s.registrationRepo.ListPlayers(gCtx, nil, id)
		if err != nil {
			return err
		}
		players = p
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}

	tournament.Players = make([]models.Player, 0, len(players))
	for _, p := range players {
		tournament.Players = append(tournament.Players, *p)
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if tournaments == nil {
		return []*models.Tournament{}, nil
	}
	return tournaments, nil
}

func (s *tournamentService) LatestTournament(ctx context.Context) (*models.Tournament, error) {
	t, err := s.tournamentRepo.Latest(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get latest tournament: %w", err)
	}
	return t, nil
}

func (s *tournamentService) RegisterPlayer(ctx context.Context, tournamentID, playerID int) (*models.Registration, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", playerID, err)
	}

	reg := &models.Registration{TournamentID: tournamentID, PlayerID: playerID}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRegistrationConflict):
			return nil, ErrRegistrationConflict
		case errors.Is(err, repositories.ErrRegistrationInvalid):
			// игрок или турнир удалены между проверкой и вставкой
			return nil, ErrNotFound
		default:
			return nil, fmt.Errorf("%w: register player %d: %w", ErrPersistenceFailure, playerID, err)
		}
	}
	return reg, nil
}

func (s *tournamentService) ListRegisteredPlayers(ctx context.Context, tournamentID int) ([]*models.Player, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	players, err := s.registrationRepo.ListPlayers(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of tournament %d: %w", tournamentID, err)
	}
	if players == nil {
		return []*models.Player{}, nil
	}
	return players, nil
}
