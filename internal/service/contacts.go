package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/restapp/backend/internal/db"
	"github.com/restapp/backend/internal/model"
)

type ContactRepository interface {
	CreateContact(ctx context.Context, ownerID int64, req model.ContactRequest) (*model.Contact, error)
	ListContacts(ctx context.Context, ownerID int64, filter model.ContactFilter) ([]model.Contact, error)
	GetContact(ctx context.Context, ownerID, contactID int64) (*model.Contact, error)
	UpdateContact(ctx context.Context, ownerID, contactID int64, req model.ContactRequest) (*model.Contact, error)
	DeleteContact(ctx context.Context, ownerID, contactID int64) (bool, error)
}

// ContactService scopes every operation to the calling user's id.
type ContactService struct {
	repo ContactRepository
}

func NewContactService(repo ContactRepository) *ContactService {
	return &ContactService{repo: repo}
}

func (s *ContactService) Create(ctx context.Context, ownerID int64, req model.ContactRequest) (*model.Contact, error) {
	req = normalizeContact(req)
	if req.FirstName == "" {
		return nil, ErrInvalidInput
	}
	c, err := s.repo.CreateContact(ctx, ownerID, req)
	return c, mapContactError(err)
}

func (s *ContactService) List(ctx context.Context, ownerID int64, filter model.ContactFilter) ([]model.Contact, error) {
	list, err := s.repo.ListContacts(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return list, nil
}

func (s *ContactService) Get(ctx context.Context, ownerID, contactID int64) (*model.Contact, error) {
	c, err := s.repo.GetContact(ctx, ownerID, contactID)
	return c, mapContactError(err)
}

func (s *ContactService) Update(ctx context.Context, ownerID, contactID int64, req model.ContactRequest) (*model.Contact, error) {
	req = normalizeContact(req)
	if req.FirstName == "" {
		return nil, ErrInvalidInput
	}
	c, err := s.repo.UpdateContact(ctx, ownerID, contactID, req)
	return c, mapContactError(err)
}

func (s *ContactService) Delete(ctx context.Context, ownerID, contactID int64) error {
	deleted, err := s.repo.DeleteContact(ctx, ownerID, contactID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func normalizeContact(req model.ContactRequest) model.ContactRequest {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Birthday = strings.TrimSpace(req.Birthday)
	return req
}

func mapContactError(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsNoRows(err):
		return ErrNotFound
	case db.IsUniqueViolation(err):
		return ErrConflict
	default:
		return fmt.Errorf("contact query: %w", err)
	}
}
