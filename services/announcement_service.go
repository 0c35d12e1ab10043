package services

import (
	"context"
	"errors"
	"strings"

	"github.com/liguebillard/federation-admin/models"
	"github.com/liguebillard/federation-admin/repositories"
)

type AnnouncementInput struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Mode      *string `json:"mode,omitempty"`
	Category  *string `json:"category,omitempty"`
	Published bool    `json:"published"`
}

type AnnouncementService interface {
	Create(ctx context.Context, input AnnouncementInput) (*models.Announcement, error)
	GetByID(ctx context.Context, id int) (*models.Announcement, error)
	List(ctx context.Context, filter repositories.ListAnnouncementsFilter) ([]models.Announcement, error)
	Update(ctx context.Context, id int, input AnnouncementInput) (*models.Announcement, error)
	Delete(ctx context.Context, id int) error
}

type announcementService struct {
	announcementRepo repositories.AnnouncementRepository
}

func NewAnnouncementService(announcementRepo repositories.AnnouncementRepository) AnnouncementService {
	return &announcementService{announcementRepo: announcementRepo}
}

func (s *announcementService) Create(ctx context.Context, input AnnouncementInput) (*models.Announcement, error) {
	if err := validateAnnouncementInput(input); err != nil {
		return nil, err
	}

	a := &models.Announcement{
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
		Mode:      input.Mode,
		Category:  input.Category,
		Published: input.Published,
	}
	if err := s.announcementRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *announcementService) GetByID(ctx context.Context, id int) (*models.Announcement, error) {
	a, err := s.announcementRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAnnouncementNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *announcementService) List(ctx context.Context, filter repositories.ListAnnouncementsFilter) ([]models.Announcement, error) {
	return s.announcementRepo.List(ctx, filter)
}

func (s *announcementService) Update(ctx context.Context, id int, input AnnouncementInput) (*models.Announcement, error) {
	if err := validateAnnouncementInput(input); err != nil {
		return nil, err
	}

	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Title = strings.TrimSpace(input.Title)
	a.Content = input.Content
	a.Mode = input.Mode
	a.Category = input.Category
	a.Published = input.Published

	if err := s.announcementRepo.Update(ctx, a); err != nil {
		if errors.Is(err, repositories.ErrAnnouncementNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *announcementService) Delete(ctx context.Context, id int) error {
	err := s.announcementRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrAnnouncementNotFound) {
		return ErrAnnouncementNotFound
	}
	return err
}

func validateAnnouncementInput(input AnnouncementInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(input.Content) == "" {
		return ErrContentRequired
	}
	return nil
}
