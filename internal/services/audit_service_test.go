package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hasan-ston/forstudents/internal/models"
)

func seedAuditRows(t *testing.T, repo *mockRepository) (*models.User, *models.Document) {
	t.Helper()
	user := repo.addUser(&models.User{Email: "u@campus.edu", Role: models.RoleUser})
	doc := repo.addDocument(&models.Document{Title: "Calculus", Status: models.StatusApproved, UploaderID: user.ID})

	ctx := context.Background()
	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		audit := &models.DownloadAudit{UserID: &user.ID, DocumentID: doc.ID, IPAddress: ip, UserAgent: "test-agent"}
		if err := repo.Audit().Create(ctx, audit); err != nil {
			t.Fatalf("seed audit row: %v", err)
		}
	}
	return user, doc
}

func TestAuditService_ListResolvesNames(t *testing.T) {
	repo := newMockRepository()
	user, doc := seedAuditRows(t, repo)
	service := NewAuditService(repo, testLogger())

	entries, total, err := service.List(context.Background(), AuditListOptions{UserID: &user.ID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d (total %d)", len(entries), total)
	}
	for _, entry := range entries {
		if entry.UserEmail != "u@campus.edu" {
			t.Fatalf("email not resolved: %+v", entry)
		}
		if entry.DocumentTitle != doc.Title {
			t.Fatalf("title not resolved: %+v", entry)
		}
	}
}

func TestAuditService_ListDeletedDocumentFallsBack(t *testing.T) {
	repo := newMockRepository()
	user := repo.addUser(&models.User{Email: "u@campus.edu", Role: models.RoleUser})
	service := NewAuditService(repo, testLogger())
	ctx := context.Background()

	// The audited document no longer exists.
	audit := &models.DownloadAudit{UserID: &user.ID, DocumentID: 404, IPAddress: "10.0.0.1"}
	if err := repo.Audit().Create(ctx, audit); err != nil {
		t.Fatalf("seed audit row: %v", err)
	}

	entries, _, err := service.List(ctx, AuditListOptions{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 1 || entries[0].DocumentTitle != "" {
		t.Fatalf("deleted document should leave an empty title, got %+v", entries)
	}
}

func TestAuditService_ExportXLSX(t *testing.T) {
	repo := newMockRepository()
	_, doc := seedAuditRows(t, repo)
	service := NewAuditService(repo, testLogger())

	data, err := service.ExportXLSX(context.Background(), AuditListOptions{})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported bytes are not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Downloads")
	if err != nil {
		t.Fatalf("missing Downloads sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Time (UTC)" || rows[0][1] != "User" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	if rows[1][1] != "u@campus.edu" || rows[1][2] != doc.Title {
		t.Fatalf("unexpected data row: %v", rows[1])
	}
}
