package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/repositories"
)

type auditService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAuditService(repo repositories.Repository, logger *slog.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) List(ctx context.Context, opts AuditListOptions) ([]*models.AuditEntryResponse, int64, error) {
	entries, total, err := s.listEntries(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ExportXLSX renders the filtered audit log as a spreadsheet for offline
// review.
func (s *auditService) ExportXLSX(ctx context.Context, opts AuditListOptions) ([]byte, error) {
	// Exports ignore pagination and cap at a fixed window instead.
	opts.Page = 0
	if opts.PageSize <= 0 || opts.PageSize > 10000 {
		opts.PageSize = 10000
	}

	entries, _, err := s.listEntries(ctx, opts)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Downloads"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Time (UTC)", "User", "Document", "IP Address", "User Agent"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, entry := range entries {
		userLabel := entry.UserEmail
		if userLabel == "" && entry.UserID != nil {
			userLabel = fmt.Sprintf("user #%d", *entry.UserID)
		}
		docLabel := entry.DocumentTitle
		if docLabel == "" {
			docLabel = fmt.Sprintf("document #%d", entry.DocumentID)
		}

		values := []interface{}{
			entry.CreatedAt.UTC().Format(time.RFC3339),
			userLabel,
			docLabel,
			entry.IPAddress,
			entry.UserAgent,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}

	s.logger.Info("Audit log exported", "rows", len(entries))
	return buf.Bytes(), nil
}

func (s *auditService) listEntries(ctx context.Context, opts AuditListOptions) ([]*models.AuditEntryResponse, int64, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	filters := repositories.AuditFilters{
		UserID:     opts.UserID,
		DocumentID: opts.DocumentID,
		DateFrom:   opts.DateFrom,
		DateTo:     opts.DateTo,
		Limit:      pageSize,
	}
	if opts.Page > 1 {
		filters.Offset = (opts.Page - 1) * pageSize
	}

	audits, total, err := s.repo.Audit().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audits: %w", err)
	}

	// Resolve display names once per distinct id, deleted rows fall back
	// to the raw identifier.
	emails := make(map[uint]string)
	titles := make(map[uint]string)

	responses := make([]*models.AuditEntryResponse, 0, len(audits))
	for _, audit := range audits {
		resp := &models.AuditEntryResponse{
			ID:         audit.ID,
			UserID:     audit.UserID,
			DocumentID: audit.DocumentID,
			IPAddress:  audit.IPAddress,
			UserAgent:  audit.UserAgent,
			CreatedAt:  audit.CreatedAt,
		}

		if audit.UserID != nil {
			email, seen := emails[*audit.UserID]
			if !seen {
				if user, err := s.repo.User().GetByID(ctx, *audit.UserID); err == nil {
					email = user.Email
				}
				emails[*audit.UserID] = email
			}
			resp.UserEmail = email
		}

		title, seen := titles[audit.DocumentID]
		if !seen {
			if doc, err := s.repo.Document().GetByID(ctx, audit.DocumentID); err == nil {
				title = doc.Title
			}
			titles[audit.DocumentID] = title
		}
		resp.DocumentTitle = title

		responses = append(responses, resp)
	}
	return responses, total, nil
}
