package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/notes"
	"github.com/hasan-ston/forstudents/internal/repositories"
	"github.com/hasan-ston/forstudents/internal/storage"
)

type questionService struct {
	repo      repositories.Repository
	store     *storage.Store
	generator notes.Generator
	logger    *slog.Logger
}

func NewQuestionService(repo repositories.Repository, store *storage.Store, generator notes.Generator, logger *slog.Logger) QuestionService {
	return &questionService{
		repo:      repo,
		store:     store,
		generator: generator,
		logger:    logger,
	}
}

// Generate asks the upstream service for fresh question pairs and
// overwrites the document's stored set. Generation is reserved for paid
// users and admins; a failed generation leaves any previously stored set
// untouched.
func (s *questionService) Generate(ctx context.Context, actor Actor, documentID uint) (*models.QuestionSetResponse, error) {
	user, doc, err := s.loadDocument(ctx, actor, documentID)
	if err != nil {
		return nil, err
	}
	if !user.HasUnlimitedAccess() {
		return nil, ErrForbidden
	}

	content, err := s.store.Read(doc.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, ErrFileMissing
		}
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}

	generated, err := s.generator.Generate(ctx, doc.Title, content)
	if err != nil {
		s.logger.Warn("Question generation failed", "document_id", documentID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	pairs := make([]models.QuestionPair, 0, len(generated))
	for _, p := range generated {
		pairs = append(pairs, models.QuestionPair{Question: p.Question, Answer: p.Answer})
	}

	now := time.Now().UTC()
	set := &models.QuestionSet{DocumentID: documentID, GeneratedAt: now}
	if err := set.SetPairs(pairs); err != nil {
		return nil, fmt.Errorf("failed to encode question pairs: %w", err)
	}
	if err := s.repo.QuestionSet().Upsert(ctx, set); err != nil {
		return nil, fmt.Errorf("failed to store question set: %w", err)
	}

	s.logger.Info("Question set generated", "document_id", documentID, "pairs", len(pairs))
	return &models.QuestionSetResponse{DocumentID: documentID, Pairs: pairs, GeneratedAt: &now}, nil
}

// Get serves the stored question set to any authenticated user who can see
// the document. A document with no generated set yet answers with an empty
// set, not an error.
func (s *questionService) Get(ctx context.Context, actor Actor, documentID uint) (*models.QuestionSetResponse, error) {
	if _, _, err := s.loadDocument(ctx, actor, documentID); err != nil {
		return nil, err
	}

	set, err := s.repo.QuestionSet().GetByDocumentID(ctx, documentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &models.QuestionSetResponse{DocumentID: documentID, Pairs: []models.QuestionPair{}}, nil
		}
		return nil, fmt.Errorf("failed to get question set: %w", err)
	}

	pairs, err := set.GetPairs()
	if err != nil {
		return nil, fmt.Errorf("failed to decode question pairs: %w", err)
	}

	generatedAt := set.GeneratedAt
	return &models.QuestionSetResponse{DocumentID: documentID, Pairs: pairs, GeneratedAt: &generatedAt}, nil
}

// loadDocument resolves the caller and enforces document visibility shared
// by both question operations.
func (s *questionService) loadDocument(ctx context.Context, actor Actor, documentID uint) (*models.User, *models.Document, error) {
	user, err := s.repo.User().GetByID(ctx, actor.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	doc, err := s.repo.Document().GetByID(ctx, documentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, fmt.Errorf("failed to get document: %w", err)
	}
	if !doc.IsApproved() && !user.IsAdmin() && doc.UploaderID != user.ID {
		return nil, nil, ErrDocumentNotFound
	}
	return user, doc, nil
}
