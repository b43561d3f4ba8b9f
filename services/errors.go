package services

import (
	"errors"

	"github.com/Dosada05/swiss-tournament/pairing"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Валидация
	ErrValidationFailed       = errors.New("validation failed")
	ErrPlayerNameRequired     = errors.New("player name is required")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrSamePlayer             = errors.New("a match needs two different players")

	// Сущности
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Конфликты
	ErrRegistrationConflict  = errors.New("player is already registered for this tournament")
	ErrPlayerNotRegistered   = errors.New("player is not registered for this tournament")
	ErrResultAlreadyRecorded = errors.New("result for this match was already recorded")
	ErrRoundConflict         = errors.New("round was paired concurrently")
	ErrPlayerAlreadyPaired   = errors.New("player already has a match or bye in this round")

	// Правила турнира
	ErrInsufficientPlayers    = pairing.ErrInsufficientPlayers
	ErrNoValidPairing         = pairing.ErrNoValidPairing
	ErrPairingSearchExhausted = pairing.ErrSearchExhausted
	ErrRoundIncomplete        = errors.New("current round still has matches without a result")
	ErrResultPlayersMismatch  = errors.New("winner and loser must be the two players of the match")
	ErrRoundOutOfSequence     = errors.New("match round must be an existing round or the next one")
	ErrRematch                = errors.New("players have already met in this tournament")

	// Аутентификация
	ErrAuthInvalidCredentials = errors.New("invalid username or password")

	// Инфраструктура
	ErrPersistenceFailure = errors.New("failed to persist changes")
	ErrExportDisabled     = errors.New("standings export is not configured")
)
