package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	CountPlayers(ctx context.Context) (int, error)
	DeletePlayers(ctx context.Context) (int64, error)
}

type CreatePlayerInput struct {
	Name string `json:"name"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	player := &models.Player{Name: name}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNameInvalid) {
			return nil, ErrPlayerNameRequired
		}
		return nil, fmt.Errorf("%w: create player: %w", ErrPersistenceFailure, err)
	}
	return player, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	if players == nil {
		return []*models.Player{}, nil
	}
	return players, nil
}

func (s *playerService) CountPlayers(ctx context.Context) (int, error) {
	count, err := s.playerRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// DeletePlayers removes every player. Registrations, matches and results
// referencing them go with them.
func (s *playerService) DeletePlayers(ctx context.Context) (int64, error) {
	n, err := s.playerRepo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: delete players: %w", ErrPersistenceFailure, err)
	}
	return n, nil
}
