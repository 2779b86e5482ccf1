package service

import (
	"context"
	"errors"
	"time"

	"lexcite-backend/models"
	"lexcite-backend/repository"

	"github.com/google/uuid"
)

var (
	ErrCitationNotFound = errors.New("saved citation not found")
	ErrSectionNotFound  = errors.New("section not found")
)

// CitationService handles the user's citation library and the direct
// formatting path used for clipboard copies
type CitationService struct {
	citationRepo     *repository.SavedCitationRepository
	sectionRepo      *repository.SectionRepository
	documentRepo     *repository.DocumentRepository
	jurisdictionRepo *repository.JurisdictionRepository
}

// CitationServiceOption is a functional option for CitationService
type CitationServiceOption func(*CitationService)

// WithSavedCitationRepository sets the saved citation repository
func WithSavedCitationRepository(repo *repository.SavedCitationRepository) CitationServiceOption {
	return func(s *CitationService) {
		s.citationRepo = repo
	}
}

// WithSectionRepository sets the section repository
func WithSectionRepository(repo *repository.SectionRepository) CitationServiceOption {
	return func(s *CitationService) {
		s.sectionRepo = repo
	}
}

// WithDocumentRepository sets the document repository
func WithDocumentRepository(repo *repository.DocumentRepository) CitationServiceOption {
	return func(s *CitationService) {
		s.documentRepo = repo
	}
}

// WithJurisdictionRepository sets the jurisdiction repository
func WithJurisdictionRepository(repo *repository.JurisdictionRepository) CitationServiceOption {
	return func(s *CitationService) {
		s.jurisdictionRepo = repo
	}
}

// NewCitationService creates a new citation service
func NewCitationService(opts ...CitationServiceOption) *CitationService {
	s := &CitationService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveCitationRequest represents a request to save a citation
type SaveCitationRequest struct {
	UserID    uuid.UUID
	SectionID uuid.UUID
	Notes     *string
	Tags      []string
}

// SaveCitationResult represents the result of saving a citation
type SaveCitationResult struct {
	Citation *models.SavedCitation
}

// SaveCitation saves a section to the user's citation library
func (s *CitationService) SaveCitation(ctx context.Context, req SaveCitationRequest) (*SaveCitationResult, error) {
	if s.citationRepo == nil {
		return nil, errors.New("saved citation repository not set")
	}

	citation := &models.SavedCitation{
		UserID:      req.UserID,
		SectionID:   req.SectionID,
		Notes:       req.Notes,
		Tags:        req.Tags,
		Collections: []string{},
	}
	if citation.Tags == nil {
		citation.Tags = []string{}
	}

	if err := s.citationRepo.Create(ctx, citation); err != nil {
		return nil, err
	}

	return &SaveCitationResult{Citation: citation}, nil
}

// ListCitationsRequest represents a request to list a user's saved citations
type ListCitationsRequest struct {
	UserID uuid.UUID
}

// ListCitationsResult represents the result of listing saved citations
type ListCitationsResult struct {
	Citations []*models.SavedCitation
}

// ListCitations lists the user's saved citations, newest first
func (s *CitationService) ListCitations(ctx context.Context, req ListCitationsRequest) (*ListCitationsResult, error) {
	if s.citationRepo == nil {
		return nil, errors.New("saved citation repository not set")
	}

	citations, err := s.citationRepo.ListByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return &ListCitationsResult{Citations: citations}, nil
}

// UpdateCitationRequest represents a request to update a saved citation's annotations
type UpdateCitationRequest struct {
	ID          uuid.UUID
	Notes       *string
	Tags        []string
	Collections []string
}

// UpdateCitationResult represents the result of updating a saved citation
type UpdateCitationResult struct {
	Citation *models.SavedCitation
}

// UpdateCitation updates the annotations on a saved citation
func (s *CitationService) UpdateCitation(ctx context.Context, req UpdateCitationRequest) (*UpdateCitationResult, error) {
	if s.citationRepo == nil {
		return nil, errors.New("saved citation repository not set")
	}

	citation, err := s.citationRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, ErrCitationNotFound
	}

	if req.Notes != nil {
		citation.Notes = req.Notes
	}
	if req.Tags != nil {
		citation.Tags = req.Tags
	}
	if req.Collections != nil {
		citation.Collections = req.Collections
	}

	if err := s.citationRepo.Update(ctx, citation); err != nil {
		return nil, err
	}

	return &UpdateCitationResult{Citation: citation}, nil
}

// DeleteCitationRequest represents a request to delete a saved citation
type DeleteCitationRequest struct {
	ID uuid.UUID
}

// DeleteCitation removes a citation from the user's library
func (s *CitationService) DeleteCitation(ctx context.Context, req DeleteCitationRequest) error {
	if s.citationRepo == nil {
		return errors.New("saved citation repository not set")
	}
	return s.citationRepo.Delete(ctx, req.ID)
}

// RecordAccessRequest represents a request to record an access to a saved citation
type RecordAccessRequest struct {
	ID uuid.UUID
}

// RecordAccessResult carries the updated access count
type RecordAccessResult struct {
	AccessCount int
}

// RecordAccess bumps the access counter on a saved citation
func (s *CitationService) RecordAccess(ctx context.Context, req RecordAccessRequest) (*RecordAccessResult, error) {
	if s.citationRepo == nil {
		return nil, errors.New("saved citation repository not set")
	}

	count, err := s.citationRepo.IncrementAccessCount(ctx, req.ID)
	if err != nil {
		return nil, ErrCitationNotFound
	}

	return &RecordAccessResult{AccessCount: count}, nil
}

// FormatRequest represents a request to format one citation string, the
// path used for clipboard copies
type FormatRequest struct {
	SectionID      uuid.UUID
	DocumentID     uuid.UUID
	JurisdictionID uuid.UUID
	Style          models.CitationStyle
}

// FormatResult carries the formatted citation string
type FormatResult struct {
	Citation string
	Style    models.CitationStyle
}

// Format resolves the triple and renders a single citation string in the
// chosen style
func (s *CitationService) Format(ctx context.Context, req FormatRequest) (*FormatResult, error) {
	if s.sectionRepo == nil || s.documentRepo == nil || s.jurisdictionRepo == nil {
		return nil, errors.New("reference repositories not set")
	}

	section, err := s.sectionRepo.GetByID(ctx, req.SectionID)
	if err != nil {
		return nil, ErrSectionNotFound
	}
	document, err := s.documentRepo.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, ErrMissingReference
	}
	jurisdiction, err := s.jurisdictionRepo.GetByID(ctx, req.JurisdictionID)
	if err != nil {
		return nil, ErrMissingReference
	}

	meta := newCitationMetadata(section, document, jurisdiction, uuid.Nil, time.Now())
	citation, err := FormatCitation(meta, req.Style)
	if err != nil {
		return nil, err
	}

	return &FormatResult{Citation: citation, Style: req.Style}, nil
}
