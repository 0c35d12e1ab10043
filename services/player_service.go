package services

import (
	"context"
	"errors"
	"strings"

	"github.com/liguebillard/federation-admin/models"
	"github.com/liguebillard/federation-admin/repositories"
)

type PlayerInput struct {
	Licence   string  `json:"licence"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Club      string  `json:"club"`
	Email     *string `json:"email,omitempty"`
}

type PlayerService interface {
	Create(ctx context.Context, input PlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context, filter repositories.ListPlayersFilter) ([]models.Player, error)
	Update(ctx context.Context, id int, input PlayerInput) (*models.Player, error)
	Delete(ctx context.Context, id int) error
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) Create(ctx context.Context, input PlayerInput) (*models.Player, error) {
	if models.NormalizeLicence(input.Licence) == "" {
		return nil, ErrLicenceRequired
	}

	club := strings.TrimSpace(input.Club)
	if club == "" {
		club = models.PlaceholderClub
	}
	p := &models.Player{
		Licence:   input.Licence,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Club:      club,
		Email:     input.Email,
	}
	if err := s.playerRepo.Create(ctx, nil, p); err != nil {
		if errors.Is(err, repositories.ErrPlayerLicenceConflict) {
			return nil, ErrLicenceConflict
		}
		return nil, err
	}
	return p, nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	p, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *playerService) List(ctx context.Context, filter repositories.ListPlayersFilter) ([]models.Player, error) {
	return s.playerRepo.List(ctx, filter)
}

func (s *playerService) Update(ctx context.Context, id int, input PlayerInput) (*models.Player, error) {
	if models.NormalizeLicence(input.Licence) == "" {
		return nil, ErrLicenceRequired
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Licence = input.Licence
	p.FirstName = strings.TrimSpace(input.FirstName)
	p.LastName = strings.TrimSpace(input.LastName)
	if club := strings.TrimSpace(input.Club); club != "" {
		p.Club = club
	}
	p.Email = input.Email

	if err := s.playerRepo.Update(ctx, p); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerNotFound):
			return nil, ErrPlayerNotFound
		case errors.Is(err, repositories.ErrPlayerLicenceConflict):
			return nil, ErrLicenceConflict
		}
		return nil, err
	}
	return p, nil
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	err := s.playerRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return ErrPlayerNotFound
	}
	return err
}
