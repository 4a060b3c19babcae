package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hasan-ston/forstudents/internal/config"
	"github.com/hasan-ston/forstudents/internal/events"
	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/repositories"
	"github.com/hasan-ston/forstudents/internal/storage"
	"github.com/hasan-ston/forstudents/internal/validator"
)

type documentService struct {
	repo        repositories.Repository
	store       *storage.Store
	entitlement EntitlementService
	publisher   events.Publisher
	logger      *slog.Logger
	validator   *validator.Validator
	storageCfg  config.StorageConfig
}

func NewDocumentService(
	repo repositories.Repository,
	store *storage.Store,
	entitlement EntitlementService,
	publisher events.Publisher,
	logger *slog.Logger,
	v *validator.Validator,
	storageCfg config.StorageConfig,
) DocumentService {
	return &documentService{
		repo:        repo,
		store:       store,
		entitlement: entitlement,
		publisher:   publisher,
		logger:      logger,
		validator:   v,
		storageCfg:  storageCfg,
	}
}

func (s *documentService) Upload(ctx context.Context, actor Actor, req *validator.DocumentUploadRequest, file UploadInput) (*models.DocumentResponse, error) {
	s.logger.Info("Uploading document", "uploader_id", actor.ID, "title", req.Title, "course_code", req.CourseCode)

	if verrs := s.validator.GetBusinessValidator().ValidateUpload(req, file.FileName, file.Size, s.storageCfg.MaxUploadBytes); verrs.HasErrors() {
		return nil, validationFailure(verrs)
	}

	blobName := uuid.NewString() + ".pdf"
	written, err := s.store.Save(blobName, file.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	if s.storageCfg.MaxUploadBytes > 0 && written > s.storageCfg.MaxUploadBytes {
		// The declared size passed validation but the stream was larger.
		_ = s.store.Remove(blobName)
		return nil, validationFailure(validator.ValidationErrors{{
			Field:   "file",
			Message: fmt.Sprintf("file exceeds the %d byte limit", s.storageCfg.MaxUploadBytes),
			Rule:    "file_size",
		}})
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}

	doc := &models.Document{
		Title:       strings.TrimSpace(req.Title),
		CourseCode:  strings.ToUpper(strings.TrimSpace(req.CourseCode)),
		Term:        req.Term,
		Kind:        req.Kind,
		Notes:       req.Notes,
		Status:      models.StatusPending,
		FileName:    blobName,
		ContentType: contentType,
		UploaderID:  actor.ID,
	}
	if req.Year != nil {
		year := fmt.Sprintf("%d", *req.Year)
		doc.Year = &year
	}

	if err := s.repo.Document().Create(ctx, doc); err != nil {
		_ = s.store.Remove(blobName)
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.publish(ctx, events.Notification{
		Type:       events.EventDocumentSubmitted,
		UserID:     &actor.ID,
		DocumentID: &doc.ID,
		Data:       map[string]string{"title": doc.Title, "course_code": doc.CourseCode},
	})

	s.logger.Info("Document uploaded", "document_id", doc.ID, "bytes", written)
	return s.buildResponse(doc, true), nil
}

func (s *documentService) Get(ctx context.Context, actor *Actor, id uint) (*models.DocumentResponse, error) {
	doc, err := s.repo.Document().GetByIDWithUploader(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if !s.canSee(actor, doc) {
		// Hidden documents are indistinguishable from missing ones.
		return nil, ErrDocumentNotFound
	}

	return s.buildResponse(doc, s.seesStatus(actor, doc)), nil
}

func (s *documentService) List(ctx context.Context, actor *Actor, opts DocumentListOptions) (*models.DocumentListResponse, error) {
	filters := repositories.DocumentFilters{
		CourseCode: opts.CourseCode,
		Kind:       opts.Kind,
	}

	isAdmin := actor != nil && actor.IsAdmin()
	if opts.Mine && actor != nil {
		filters.UploaderID = &actor.ID
		filters.Status = opts.Status
	} else if isAdmin {
		filters.Status = opts.Status
	} else {
		// The public catalog only ever shows approved documents.
		approved := models.StatusApproved
		filters.Status = &approved
	}

	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	filters.Limit = pageSize
	if opts.Page > 1 {
		filters.Offset = (opts.Page - 1) * pageSize
	}

	docs, total, err := s.repo.Document().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	responses := make([]*models.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, s.buildResponse(doc, s.seesStatus(actor, doc)))
	}
	return &models.DocumentListResponse{Documents: responses, Total: total}, nil
}

// Download runs the entitlement gate and returns the stored file. The blob
// is checked before any quota is spent, a missing file must not cost the
// caller a free slot.
func (s *documentService) Download(ctx context.Context, actor Actor, id uint, meta AccessMeta) (*models.DownloadResult, error) {
	doc, err := s.repo.Document().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	// Metadata visibility lets uploaders see their own pending docs, but
	// only admins may fetch unapproved content. An uploader must not spend
	// a quota slot on a document that never cleared review.
	if !doc.IsApproved() && !actor.IsAdmin() {
		return nil, ErrDocumentNotFound
	}

	exists, err := s.store.Exists(doc.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to check stored file: %w", err)
	}
	if !exists {
		return nil, ErrFileMissing
	}

	if err := s.entitlement.Authorize(ctx, actor.ID, doc.ID, meta); err != nil {
		return nil, err
	}

	content, err := s.store.Read(doc.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}

	downloadName := strings.TrimSpace(doc.Title)
	if downloadName == "" {
		downloadName = doc.FileName
	} else if !strings.HasSuffix(strings.ToLower(downloadName), ".pdf") {
		downloadName += ".pdf"
	}

	return &models.DownloadResult{
		FileName:    downloadName,
		ContentType: doc.ContentType,
		Content:     content,
	}, nil
}

func (s *documentService) Approve(ctx context.Context, actor Actor, id uint, note *string) (*models.DocumentResponse, error) {
	return s.review(ctx, actor, id, models.StatusApproved, events.EventDocumentApproved, note)
}

func (s *documentService) Reject(ctx context.Context, actor Actor, id uint, note *string) (*models.DocumentResponse, error) {
	return s.review(ctx, actor, id, models.StatusRejected, events.EventDocumentRejected, note)
}

func (s *documentService) review(ctx context.Context, actor Actor, id uint, target models.DocumentStatus, eventType string, note *string) (*models.DocumentResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	doc, err := s.repo.Document().GetByIDWithUploader(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	// Repeating a decision is a no-op, crossing terminal states is not.
	if doc.Status == target {
		return s.buildResponse(doc, true), nil
	}
	if verrs := s.validator.GetBusinessValidator().ValidateStatusTransition(doc.Status, target); verrs.HasErrors() {
		return nil, ErrConflict
	}

	if err := s.repo.Document().UpdateStatus(ctx, id, target); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to update document status: %w", err)
	}
	doc.Status = target

	data := map[string]string{"title": doc.Title}
	if note != nil {
		data["note"] = *note
	}
	s.publish(ctx, events.Notification{
		Type:       eventType,
		UserID:     &doc.UploaderID,
		DocumentID: &doc.ID,
		Data:       data,
	})

	s.logger.Info("Document reviewed", "document_id", id, "status", target, "reviewer_id", actor.ID)
	return s.buildResponse(doc, true), nil
}

func (s *documentService) Delete(ctx context.Context, actor Actor, id uint) error {
	doc, err := s.repo.Document().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	if !actor.IsAdmin() && doc.UploaderID != actor.ID {
		return ErrForbidden
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.QuestionSet().DeleteByDocument(ctx, id); err != nil {
			return err
		}
		if err := tx.Access().DeleteByDocument(ctx, id); err != nil {
			return err
		}
		if err := tx.Audit().DeleteByDocument(ctx, id); err != nil {
			return err
		}
		if err := tx.Document().Delete(ctx, id); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	// Blob removal is best effort, an orphaned file is harmless.
	if err := s.store.Remove(doc.FileName); err != nil {
		s.logger.Warn("Failed to remove stored file", "document_id", id, "file", doc.FileName, "error", err)
	}

	s.logger.Info("Document deleted", "document_id", id, "actor_id", actor.ID)
	return nil
}

// canSee reports whether the caller may know the document exists. Approved
// documents are public, the rest are visible to admins and the uploader.
func (s *documentService) canSee(actor *Actor, doc *models.Document) bool {
	if doc.IsApproved() {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || doc.UploaderID == actor.ID
}

// seesStatus reports whether the response should carry the review status.
func (s *documentService) seesStatus(actor *Actor, doc *models.Document) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || doc.UploaderID == actor.ID
}

func (s *documentService) buildResponse(doc *models.Document, includeStatus bool) *models.DocumentResponse {
	resp := &models.DocumentResponse{
		ID:         doc.ID,
		Title:      doc.Title,
		CourseCode: doc.CourseCode,
		Year:       doc.Year,
		Term:       doc.Term,
		Kind:       doc.Kind,
		Notes:      doc.Notes,
		CreatedAt:  doc.CreatedAt,
	}
	if includeStatus {
		status := doc.Status
		resp.Status = &status
	}
	if doc.Uploader != nil {
		resp.Uploader = &models.UploaderInfo{ID: doc.Uploader.ID, Email: doc.Uploader.Email}
	}
	return resp
}

func (s *documentService) publish(ctx context.Context, n events.Notification) {
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.logger.Warn("Failed to publish notification", "type", n.Type, "error", err)
	}
}
