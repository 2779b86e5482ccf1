package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lexcite-backend/models"
	"lexcite-backend/repository"
	"lexcite-backend/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrExportJobNotFound       = errors.New("export job not found")
	ErrExportJobCreationFailed = errors.New("failed to create export job")
	ErrEmptyExport             = errors.New("export requires at least one citation")
	ErrInvalidExportOptions    = errors.New("invalid export options")
	ErrMissingReference        = errors.New("missing reference")
	ErrArtifactNotReady        = errors.New("export artifact not ready")
)

// ExportService drives court-defensible exports: single-item quick exports
// and background batch export jobs with progress reporting.
type ExportService struct {
	jobRepo          *repository.ExportJobRepository
	artifactRepo     *repository.ArtifactRepository
	sectionRepo      *repository.SectionRepository
	documentRepo     *repository.DocumentRepository
	jurisdictionRepo *repository.JurisdictionRepository
	citationRepo     *repository.SavedCitationRepository
	provenanceRepo   *repository.ProvenanceRepository
	storage          storage.Storage
}

// ExportServiceOption is a functional option for ExportService
type ExportServiceOption func(*ExportService)

// ExportWithJobRepository sets the export job repository
func ExportWithJobRepository(repo *repository.ExportJobRepository) ExportServiceOption {
	return func(s *ExportService) {
		s.jobRepo = repo
	}
}

// ExportWithArtifactRepository sets the artifact repository
func ExportWithArtifactRepository(repo *repository.ArtifactRepository) ExportServiceOption {
	return func(s *ExportService) {
		s.artifactRepo = repo
	}
}

// ExportWithSectionRepository sets the section repository
func ExportWithSectionRepository(repo *repository.SectionRepository) ExportServiceOption {
	return func(s *ExportService) {
		s.sectionRepo = repo
	}
}

// ExportWithDocumentRepository sets the document repository
func ExportWithDocumentRepository(repo *repository.DocumentRepository) ExportServiceOption {
	return func(s *ExportService) {
		s.documentRepo = repo
	}
}

// ExportWithJurisdictionRepository sets the jurisdiction repository
func ExportWithJurisdictionRepository(repo *repository.JurisdictionRepository) ExportServiceOption {
	return func(s *ExportService) {
		s.jurisdictionRepo = repo
	}
}

// ExportWithSavedCitationRepository sets the saved citation repository
func ExportWithSavedCitationRepository(repo *repository.SavedCitationRepository) ExportServiceOption {
	return func(s *ExportService) {
		s.citationRepo = repo
	}
}

// ExportWithProvenanceRepository sets the provenance repository
func ExportWithProvenanceRepository(repo *repository.ProvenanceRepository) ExportServiceOption {
	return func(s *ExportService) {
		s.provenanceRepo = repo
	}
}

// ExportWithStorage sets the artifact storage backend
func ExportWithStorage(st storage.Storage) ExportServiceOption {
	return func(s *ExportService) {
		s.storage = st
	}
}

// NewExportService creates a new export service
func NewExportService(opts ...ExportServiceOption) *ExportService {
	s := &ExportService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newCitationMetadata snapshots the resolved triple into the formatter's
// input bundle. Retrieval and export dates are rendered from the moment the
// export was requested, never cached.
func newCitationMetadata(section *models.Section, document *models.Document, jurisdiction *models.Jurisdiction, userID uuid.UUID, now time.Time) models.CitationMetadata {
	return models.CitationMetadata{
		Section:            section,
		Document:           document,
		Jurisdiction:       jurisdiction,
		RetrievalDate:      now.Format("January 2, 2006"),
		ExportDate:         now.Format(time.RFC3339),
		UserID:             userID,
		VerificationStatus: document.VerificationStatus,
		LastVerified:       document.LastVerified,
		SourceURL:          document.SourceURL,
	}
}

// buildExportRecord combines a formatted citation with provenance and user
// annotations into one court-defensible export record. The formatter is
// invoked exactly once, with the requested style.
func buildExportRecord(meta models.CitationMetadata, panel *models.ProvenancePanel, saved *models.SavedCitation, opts models.ExportOptions) (*models.ExportRecord, error) {
	if panel != nil {
		if err := panel.Validate(); err != nil {
			return nil, err
		}
	}

	citation, err := FormatCitation(meta, opts.CitationStyle)
	if err != nil {
		return nil, err
	}

	metadata := models.RecordMetadata{
		SectionReference: meta.Section.Reference(),
		DocumentTitle:    meta.Document.Title,
		Jurisdiction:     jurisdictionName(meta),
	}

	if opts.IncludeMetadata {
		metadata.AuthorityLevel = meta.Document.AuthorityLevel
		metadata.VerificationStatus = meta.VerificationStatus
		metadata.SourceURL = meta.SourceURL
		metadata.RetrievalDate = meta.RetrievalDate
		metadata.ExportDate = meta.ExportDate
		if panel != nil {
			retrievedAt := panel.Retrieval.RetrievedAt
			metadata.RetrievedAt = &retrievedAt
			metadata.Checksum = panel.Retrieval.Checksum
			metadata.Publisher = panel.Source.Publisher
			isOfficial := panel.Source.IsOfficialSource
			metadata.IsOfficialSource = &isOfficial
			metadata.VerificationChain = panel.Chain.Entries()
			if panel.Version != nil {
				start := panel.Version.EffectiveStart
				metadata.EffectiveStart = &start
				metadata.EffectiveEnd = panel.Version.EffectiveEnd
			}
		}
	}

	record := &models.ExportRecord{
		Citation:    citation,
		Metadata:    metadata,
		Tags:        []string{},
		Collections: []string{},
	}

	if opts.IncludeFullText && meta.Section.Text != nil && *meta.Section.Text != "" {
		text := *meta.Section.Text
		record.FullText = &text
	}

	if saved != nil {
		if saved.Notes != nil {
			record.UserNotes = *saved.Notes
		}
		if len(saved.Tags) > 0 {
			record.Tags = append([]string{}, saved.Tags...)
		}
		if len(saved.Collections) > 0 {
			record.Collections = append([]string{}, saved.Collections...)
		}
		record.AccessCount = saved.AccessCount
	}

	return record, nil
}

// batchRefs holds the caller-supplied reference collections a batch resolves
// its citation requests against
type batchRefs struct {
	Sections      map[uuid.UUID]*models.Section
	Documents     map[uuid.UUID]*models.Document
	Jurisdictions map[uuid.UUID]*models.Jurisdiction
	Provenance    map[uuid.UUID]*models.ProvenancePanel // by document ID
	Saved         map[uuid.UUID]*models.SavedCitation   // by section ID
}

func newBatchRefs() batchRefs {
	return batchRefs{
		Sections:      make(map[uuid.UUID]*models.Section),
		Documents:     make(map[uuid.UUID]*models.Document),
		Jurisdictions: make(map[uuid.UUID]*models.Jurisdiction),
		Provenance:    make(map[uuid.UUID]*models.ProvenancePanel),
		Saved:         make(map[uuid.UUID]*models.SavedCitation),
	}
}

// runBatch processes citation requests strictly in input order, so batch
// output order always equals input order. An item whose section, document,
// or jurisdiction cannot be resolved is skipped silently: excluded from the
// output and the exported count, while the progress callback still advances
// over it. Any build error fails the whole batch; the two failure modes are
// deliberately asymmetric. After every item the callback receives
// completed/total, so the final call reports exactly 1.0.
//
// Returns the records and the number of skipped items.
func runBatch(items []models.ExportItem, refs batchRefs, opts models.ExportOptions, userID uuid.UUID, now time.Time, onProgress func(float64)) ([]models.ExportRecord, int, error) {
	total := len(items)
	records := make([]models.ExportRecord, 0, total)
	skipped := 0

	for i, item := range items {
		section := refs.Sections[item.SectionID]
		document := refs.Documents[item.DocumentID]
		jurisdiction := refs.Jurisdictions[item.JurisdictionID]

		if section == nil || document == nil || jurisdiction == nil {
			skipped++
			log.Printf("export: skipping item %d: unresolved reference (section=%s document=%s jurisdiction=%s)",
				i, item.SectionID, item.DocumentID, item.JurisdictionID)
		} else {
			meta := newCitationMetadata(section, document, jurisdiction, userID, now)
			record, err := buildExportRecord(meta, refs.Provenance[document.ID], refs.Saved[section.ID], opts)
			if err != nil {
				return nil, 0, fmt.Errorf("building record for item %d: %w", i, err)
			}
			records = append(records, *record)
		}

		if onProgress != nil {
			onProgress(float64(i+1) / float64(total))
		}
	}

	return records, skipped, nil
}

// CreateExportRequest represents a request to start a batch export
type CreateExportRequest struct {
	UserID  uuid.UUID
	Items   []models.ExportItem
	Options models.ExportOptions
}

// CreateExportResult represents the result of creating an export job
type CreateExportResult struct {
	JobID uuid.UUID
}

// CreateExport validates the request and creates a pending export job.
// The actual work happens in ProcessExport; this method must stay fast.
func (s *ExportService) CreateExport(ctx context.Context, req CreateExportRequest) (*CreateExportResult, error) {
	if s.jobRepo == nil {
		return nil, errors.New("export job repository not set")
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyExport
	}
	if !req.Options.CitationStyle.IsValid() {
		return nil, fmt.Errorf("%w: unknown citation style %q", ErrInvalidExportOptions, req.Options.CitationStyle)
	}
	if !req.Options.Format.IsValid() {
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidExportOptions, req.Options.Format)
	}

	job := &models.ExportJob{
		UserID:          req.UserID,
		Status:          models.ExportStatusPending,
		Items:           models.ExportItems(req.Items),
		CitationStyle:   req.Options.CitationStyle,
		Format:          req.Options.Format,
		IncludeFullText: req.Options.IncludeFullText,
		IncludeMetadata: req.Options.IncludeMetadata,
		TotalCount:      len(req.Items),
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, ErrExportJobCreationFailed
	}

	return &CreateExportResult{JobID: job.ID}, nil
}

// ProcessExport performs the batch export work in the background: resolves
// references, runs the pipeline with progress persisted to the job row,
// encodes the artifact, and uploads it. On any failure the job is marked
// failed and no artifact is written.
func (s *ExportService) ProcessExport(ctx context.Context, jobID uuid.UUID) error {
	if s.jobRepo == nil {
		return errors.New("export job repository not set")
	}
	if s.artifactRepo == nil {
		return errors.New("artifact repository not set")
	}
	if s.storage == nil {
		return errors.New("storage not set")
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load export job: %w", err)
	}

	if err := s.jobRepo.UpdateStatus(ctx, jobID, models.ExportStatusInProgress); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	refs, err := s.loadRefs(ctx, job.UserID, job.Items)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to resolve references: "+err.Error())
		return err
	}

	now := time.Now()

	// The job row tracks progress as a completed count; the fractional value
	// is recomputed by readers from completed/total.
	completed := 0
	var progressErr error
	onProgress := func(float64) {
		completed++
		if err := s.jobRepo.UpdateProgress(ctx, jobID, completed); err != nil && progressErr == nil {
			progressErr = err
		}
	}

	records, skipped, err := runBatch(job.Items, refs, job.Options(), job.UserID, now, onProgress)
	if err != nil {
		s.markJobFailed(ctx, jobID, err.Error())
		return err
	}
	if progressErr != nil {
		s.markJobFailed(ctx, jobID, "failed to persist progress: "+progressErr.Error())
		return progressErr
	}

	header := exportHeader{
		ExportedAt:    now,
		ExportedBy:    job.UserID.String(),
		CitationStyle: job.CitationStyle,
	}

	file, err := encodeRecords(records, header, job.Format)
	if err != nil {
		s.markJobFailed(ctx, jobID, err.Error())
		return err
	}

	storagePath, err := s.storage.Upload(ctx, jobID, file.Filename, bytes.NewReader(file.Content))
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to store artifact: "+err.Error())
		return err
	}

	artifact := &models.ExportArtifact{
		UserID:      job.UserID,
		ExportJobID: jobID,
		Filename:    file.Filename,
		MimeType:    file.MimeType,
		Size:        int64(len(file.Content)),
		StoragePath: storagePath,
	}
	if err := s.artifactRepo.Create(ctx, artifact); err != nil {
		s.markJobFailed(ctx, jobID, "failed to record artifact: "+err.Error())
		return err
	}

	if err := s.jobRepo.Complete(ctx, jobID, artifact.ID, len(records), skipped); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return nil
}

// GetExportStatusRequest represents a request to get export job status
type GetExportStatusRequest struct {
	JobID uuid.UUID
}

// GetExportStatusResult represents the result of getting export job status
type GetExportStatusResult struct {
	Job *models.ExportJob
}

// GetExportStatus retrieves the status of an export job
func (s *ExportService) GetExportStatus(ctx context.Context, req GetExportStatusRequest) (*GetExportStatusResult, error) {
	if s.jobRepo == nil {
		return nil, errors.New("export job repository not set")
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, ErrExportJobNotFound
	}

	return &GetExportStatusResult{Job: job}, nil
}

// ListExportsRequest represents a request to list a user's export jobs
type ListExportsRequest struct {
	UserID uuid.UUID
	Limit  int
}

// ListExportsResult represents the result of listing export jobs
type ListExportsResult struct {
	Jobs []*models.ExportJob
}

// ListExports lists a user's export jobs, newest first
func (s *ExportService) ListExports(ctx context.Context, req ListExportsRequest) (*ListExportsResult, error) {
	if s.jobRepo == nil {
		return nil, errors.New("export job repository not set")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	jobs, err := s.jobRepo.ListByUserID(ctx, req.UserID, limit)
	if err != nil {
		return nil, err
	}

	return &ListExportsResult{Jobs: jobs}, nil
}

// GetArtifactRequest represents a request to fetch a completed job's artifact
type GetArtifactRequest struct {
	JobID uuid.UUID
}

// GetArtifactResult represents the result of fetching an artifact record
type GetArtifactResult struct {
	Artifact *models.ExportArtifact
}

// GetArtifact retrieves the artifact record for a completed export job
func (s *ExportService) GetArtifact(ctx context.Context, req GetArtifactRequest) (*GetArtifactResult, error) {
	if s.jobRepo == nil || s.artifactRepo == nil {
		return nil, errors.New("export repositories not set")
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, ErrExportJobNotFound
	}
	if job.Status != models.ExportStatusCompleted || job.ArtifactID == nil {
		return nil, ErrArtifactNotReady
	}

	artifact, err := s.artifactRepo.GetByID(ctx, *job.ArtifactID)
	if err != nil {
		return nil, ErrArtifactNotReady
	}

	return &GetArtifactResult{Artifact: artifact}, nil
}

// QuickExportRequest represents a single-item export request
type QuickExportRequest struct {
	UserID  uuid.UUID
	Item    models.ExportItem
	Options models.ExportOptions
}

// QuickExportResult carries the encoded file and the record it contains
type QuickExportResult struct {
	File   *models.ExportFile
	Record *models.ExportRecord
}

// QuickExport builds and encodes a single export record synchronously,
// skipping the batch job machinery. A missing reference is an error here,
// not a silent skip: there is nothing else in the export to salvage.
func (s *ExportService) QuickExport(ctx context.Context, req QuickExportRequest) (*QuickExportResult, error) {
	if !req.Options.CitationStyle.IsValid() {
		return nil, fmt.Errorf("%w: unknown citation style %q", ErrInvalidExportOptions, req.Options.CitationStyle)
	}
	if !req.Options.Format.IsValid() {
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidExportOptions, req.Options.Format)
	}

	refs, err := s.loadRefs(ctx, req.UserID, models.ExportItems{req.Item})
	if err != nil {
		return nil, err
	}

	section := refs.Sections[req.Item.SectionID]
	document := refs.Documents[req.Item.DocumentID]
	jurisdiction := refs.Jurisdictions[req.Item.JurisdictionID]
	if section == nil || document == nil || jurisdiction == nil {
		return nil, ErrMissingReference
	}

	now := time.Now()
	meta := newCitationMetadata(section, document, jurisdiction, req.UserID, now)
	record, err := buildExportRecord(meta, refs.Provenance[document.ID], refs.Saved[section.ID], req.Options)
	if err != nil {
		return nil, err
	}

	header := exportHeader{
		ExportedAt:    now,
		ExportedBy:    req.UserID.String(),
		CitationStyle: req.Options.CitationStyle,
	}
	file, err := encodeRecords([]models.ExportRecord{*record}, header, req.Options.Format)
	if err != nil {
		return nil, err
	}

	return &QuickExportResult{File: file, Record: record}, nil
}

// loadRefs resolves every distinct id referenced by the items into in-memory
// reference collections. A reference that does not exist is simply absent
// from the maps; only infrastructure errors propagate.
func (s *ExportService) loadRefs(ctx context.Context, userID uuid.UUID, items models.ExportItems) (batchRefs, error) {
	refs := newBatchRefs()

	if s.sectionRepo == nil || s.documentRepo == nil || s.jurisdictionRepo == nil {
		return refs, errors.New("reference repositories not set")
	}

	for _, item := range items {
		if _, seen := refs.Sections[item.SectionID]; !seen {
			section, err := s.sectionRepo.GetByID(ctx, item.SectionID)
			switch {
			case err == nil:
				refs.Sections[item.SectionID] = section
				if s.citationRepo != nil {
					saved, err := s.citationRepo.GetByUserAndSection(ctx, userID, item.SectionID)
					if err == nil {
						refs.Saved[item.SectionID] = saved
					} else if !errors.Is(err, pgx.ErrNoRows) {
						return refs, err
					}
				}
			case !errors.Is(err, pgx.ErrNoRows):
				return refs, err
			}
		}

		if _, seen := refs.Documents[item.DocumentID]; !seen {
			document, err := s.documentRepo.GetByID(ctx, item.DocumentID)
			switch {
			case err == nil:
				refs.Documents[item.DocumentID] = document
				if s.provenanceRepo != nil {
					panel, err := s.provenanceRepo.GetByDocumentID(ctx, item.DocumentID)
					if err == nil {
						refs.Provenance[item.DocumentID] = panel
					} else if !errors.Is(err, pgx.ErrNoRows) {
						return refs, err
					}
				}
			case !errors.Is(err, pgx.ErrNoRows):
				return refs, err
			}
		}

		if _, seen := refs.Jurisdictions[item.JurisdictionID]; !seen {
			jurisdiction, err := s.jurisdictionRepo.GetByID(ctx, item.JurisdictionID)
			switch {
			case err == nil:
				refs.Jurisdictions[item.JurisdictionID] = jurisdiction
			case !errors.Is(err, pgx.ErrNoRows):
				return refs, err
			}
		}
	}

	return refs, nil
}

// markJobFailed marks a job as failed with an error message
func (s *ExportService) markJobFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) {
	if err := s.jobRepo.Fail(ctx, jobID, errorMessage); err != nil {
		log.Printf("export: failed to mark job %s failed: %v", jobID, err)
	}
}
