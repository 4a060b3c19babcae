package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/hasan-ston/forstudents/internal/config"
	"github.com/hasan-ston/forstudents/internal/events"
	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/storage"
	"github.com/hasan-ston/forstudents/internal/validator"
)

func newTestDocumentService(t *testing.T, repo *mockRepository, freeDocLimit int) (DocumentService, *storage.Store, *events.MockPublisher) {
	t.Helper()

	store, err := storage.NewStoreWithFs(afero.NewMemMapFs(), "uploads")
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}

	logger := testLogger()
	publisher := events.NewMockPublisher(logger)
	entitlement := NewEntitlementService(repo, logger, freeDocLimit)

	service := NewDocumentService(repo, store, entitlement, publisher, logger, validator.NewValidator(), config.StorageConfig{
		UploadDir:      "uploads",
		MaxUploadBytes: 1 << 20,
	})
	return service, store, publisher
}

func pdfUploadRequest() *validator.DocumentUploadRequest {
	return &validator.DocumentUploadRequest{
		Title:      "Calculus Final 2023",
		CourseCode: "MATH101",
		Kind:       models.KindPaper,
	}
}

func pdfUploadInput(name string, content []byte) UploadInput {
	return UploadInput{
		FileName:    name,
		ContentType: "application/pdf",
		Size:        int64(len(content)),
		Content:     bytes.NewReader(content),
	}
}

func TestDocumentService_UploadCreatesPendingDocument(t *testing.T) {
	repo := newMockRepository()
	user := repo.addUser(&models.User{Email: "u@campus.edu", Role: models.RoleUser, Plan: models.PlanFree})
	service, store, publisher := newTestDocumentService(t, repo, 2)

	doc, err := service.Upload(context.Background(), Actor{ID: user.ID, Role: user.Role}, pdfUploadRequest(), pdfUploadInput("exam.pdf", []byte("%PDF-1.4 test")))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if doc.Status == nil || *doc.Status != models.StatusPending {
		t.Fatalf("uploader should see the pending status, got %v", doc.Status)
	}

	stored, err := repo.Document().GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("document row missing: %v", err)
	}
	if exists, _ := store.Exists(stored.FileName); !exists {
		t.Fatal("uploaded blob missing from store")
	}

	published := publisher.GetPublished()
	if len(published) != 1 || published[0].Type != events.EventDocumentSubmitted {
		t.Fatalf("expected a document.submitted notification, got %v", published)
	}
}

func TestDocumentService_UploadRejectsNonPDF(t *testing.T) {
	repo := newMockRepository()
	user := repo.addUser(&models.User{Email: "u@campus.edu", Role: models.RoleUser})
	service, _, _ := newTestDocumentService(t, repo, 2)

	_, err := service.Upload(context.Background(), Actor{ID: user.ID, Role: user.Role}, pdfUploadRequest(), pdfUploadInput("notes.docx", []byte("not a pdf")))

	var failure *ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestDocumentService_ListHidesUnapprovedFromPublic(t *testing.T) {
	repo := newMockRepository()
	uploader := repo.addUser(&models.User{Email: "u@campus.edu", Role: models.RoleUser})
	admin := repo.addUser(&models.User{Email: "a@campus.edu", Role: models.RoleAdmin})
	repo.addDocument(&models.Document{Title: "approved", Status: models.StatusApproved, UploaderID: uploader.ID})
	repo.addDocument(&models.Document{Title: "pending", Status: models.StatusPending, UploaderID: uploader.ID})
	repo.addDocument(&models.Document{Title: "rejected", Status: models.StatusRejected, UploaderID: uploader.ID})

	service, _, _ := newTestDocumentService(t, repo, 2)
	ctx := context.Background()

	// Anonymous callers only see the approved catalog.
	list, err := service.List(ctx, nil, DocumentListOptions{})
	if err != nil {
		t.Fatalf("anonymous list failed: %v", err)
	}
	if len(list.Documents) != 1 || list.Documents[0].Title != "approved" {
		t.Fatalf("anonymous catalog should hold only approved docs, got %d", len(list.Documents))
	}
	if list.Documents[0].Status != nil {
		t.Fatal("anonymous responses must not carry review status")
	}

	// Admins can filter by any status.
	pending := models.StatusPending
	adminActor := Actor{ID: admin.ID, Role: admin.Role}
	list, err = service.List(ctx, &adminActor, DocumentListOptions{Status: &pending})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(list.Documents) != 1 || list.Documents[0].Title != "pending" {
		t.Fatalf("admin should see the pending queue, got %d", len(list.Documents))
	}
}

func TestDocumentService_GetHidesPendingFromStrangers(t *testing.T) {
	repo := newMockRepository()
	uploader := repo.addUser(&models.User{Email: "u@campus.edu", Role: models.RoleUser})
	stranger := repo.addUser(&models.User{Email: "s@campus.edu", Role: models.RoleUser})
	doc := repo.addDocument(&models.Document{Title: "pending", Status: models.StatusPending, UploaderID: uploader.ID})

	service, _, _ := newTestDocumentService(t, repo, 2)
	ctx := context.Background()

	strangerActor := Actor{ID: stranger.ID, Role: stranger.Role}
	if _, err := service.Get(ctx, &strangerActor, doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("stranger should get not-found for a pending doc, got %v", err)
	}

	ownerActor := Actor{ID: uploader.ID, Role: uploader.Role}
	got, err := service.Get(ctx, &ownerActor, doc.ID)
	if err != nil {
		t.Fatalf("uploader should see own pending doc: %v", err)
	}
	if got.Status == nil || *got.Status != models.StatusPending {
		t.Fatal("uploader response should carry the review status")
	}
}

func TestDocumentService_DownloadMissingFileIsGoneAndFree(t *testing.T) {
	repo := newMockRepository()
	user := repo.addUser(&models.User{Email: "u@campus.edu", Role: models.RoleUser, Plan: models.PlanFree})
	doc := repo.addDocument(&models.Document{Title: "ghost", Status: models.StatusApproved, UploaderID: user.ID, FileName: "missing.pdf"})

	service, _, _ := newTestDocumentService(t, repo, 2)
	ctx := context.Background()
	actor := Actor{ID: user.ID, Role: user.Role}

	if _, err := service.Download(ctx, actor, doc.ID, AccessMeta{}); !errors.Is(err, ErrFileMissing) {
		t.Fatalf("expected ErrFileMissing, got %v", err)
	}

	// A gone file must not spend quota or leave an audit trail.
	if n, _ := repo.Access().CountByUser(ctx, user.ID); n != 0 {
		t.Fatalf("missing file must not spend quota, got %d access rows", n)
	}
}

func TestDocumentService_DownloadSpendsQuotaOnce(t *testing.T) {
	repo := newMockRepository()
	user := repo.addUser(&models.User{Email: "u@campus.edu", Role: models.RoleUser, Plan: models.PlanFree})
	service, store, _ := newTestDocumentService(t, repo, 1)

	content := []byte("%PDF-1.4 body")
	if _, err := store.Save("doc1.pdf", bytes.NewReader(content)); err != nil {
		t.Fatalf("seed blob: %v", err)
	}
	doc := repo.addDocument(&models.Document{Title: "Linear Algebra", Status: models.StatusApproved, UploaderID: user.ID, FileName: "doc1.pdf", ContentType: "application/pdf"})

	ctx := context.Background()
	actor := Actor{ID: user.ID, Role: user.Role}

	result, err := service.Download(ctx, actor, doc.ID, AccessMeta{IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("first download failed: %v", err)
	}
	if !bytes.Equal(result.Content, content) {
		t.Fatal("downloaded content mismatch")
	}
	if result.FileName != "Linear Algebra.pdf" {
		t.Fatalf("unexpected download name %q", result.FileName)
	}

	// Re-download of the same document is free even at the limit.
	if _, err := service.Download(ctx, actor, doc.ID, AccessMeta{}); err != nil {
		t.Fatalf("re-download should be free: %v", err)
	}

	// A second distinct document is denied at limit 1.
	if _, err := store.Save("doc2.pdf", bytes.NewReader(content)); err != nil {
		t.Fatalf("seed blob: %v", err)
	}
	doc2 := repo.addDocument(&models.Document{Title: "Other", Status: models.StatusApproved, UploaderID: user.ID, FileName: "doc2.pdf"})
	if _, err := service.Download(ctx, actor, doc2.ID, AccessMeta{}); !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected payment-required on second distinct doc, got %v", err)
	}
}

func TestDocumentService_DownloadUnapprovedOnlyForAdmins(t *testing.T) {
	repo := newMockRepository()
	uploader := repo.addUser(&models.User{Email: "u@campus.edu", Role: models.RoleUser, Plan: models.PlanFree})
	admin := repo.addUser(&models.User{Email: "a@campus.edu", Role: models.RoleAdmin})
	service, store, _ := newTestDocumentService(t, repo, 2)

	if _, err := store.Save("pending.pdf", bytes.NewReader([]byte("%PDF-1.4"))); err != nil {
		t.Fatalf("seed blob: %v", err)
	}
	doc := repo.addDocument(&models.Document{Title: "pending", Status: models.StatusPending, UploaderID: uploader.ID, FileName: "pending.pdf"})

	ctx := context.Background()

	// The uploader sees the metadata but cannot fetch unapproved content,
	// and no quota slot is spent on the attempt.
	if _, err := service.Download(ctx, Actor{ID: uploader.ID, Role: uploader.Role}, doc.ID, AccessMeta{}); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("uploader download of a pending doc should be not-found, got %v", err)
	}
	if n, _ := repo.Access().CountByUser(ctx, uploader.ID); n != 0 {
		t.Fatalf("denied download must not spend quota, got %d access rows", n)
	}

	if _, err := service.Download(ctx, Actor{ID: admin.ID, Role: admin.Role}, doc.ID, AccessMeta{}); err != nil {
		t.Fatalf("admin download of a pending doc failed: %v", err)
	}
}

func TestDocumentService_ReviewTransitions(t *testing.T) {
	repo := newMockRepository()
	admin := repo.addUser(&models.User{Email: "a@campus.edu", Role: models.RoleAdmin})
	uploader := repo.addUser(&models.User{Email: "u@campus.edu", Role: models.RoleUser})
	doc := repo.addDocument(&models.Document{Title: "pending", Status: models.StatusPending, UploaderID: uploader.ID})

	service, _, publisher := newTestDocumentService(t, repo, 2)
	ctx := context.Background()
	adminActor := Actor{ID: admin.ID, Role: admin.Role}

	// Non-admins cannot review.
	if _, err := service.Approve(ctx, Actor{ID: uploader.ID, Role: uploader.Role}, doc.ID, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin approve should be forbidden, got %v", err)
	}

	got, err := service.Approve(ctx, adminActor, doc.ID, nil)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if got.Status == nil || *got.Status != models.StatusApproved {
		t.Fatal("approve should return the approved document")
	}

	// Repeating the same decision is a no-op.
	if _, err := service.Approve(ctx, adminActor, doc.ID, nil); err != nil {
		t.Fatalf("repeated approve should be a no-op: %v", err)
	}

	// Crossing terminal states conflicts.
	if _, err := service.Reject(ctx, adminActor, doc.ID, nil); !errors.Is(err, ErrConflict) {
		t.Fatalf("approved to rejected should conflict, got %v", err)
	}

	published := publisher.GetPublished()
	if len(published) != 1 || published[0].Type != events.EventDocumentApproved {
		t.Fatalf("expected exactly one document.approved notification, got %v", published)
	}
}

func TestDocumentService_DeletePermissions(t *testing.T) {
	repo := newMockRepository()
	uploader := repo.addUser(&models.User{Email: "u@campus.edu", Role: models.RoleUser})
	stranger := repo.addUser(&models.User{Email: "s@campus.edu", Role: models.RoleUser})
	service, store, _ := newTestDocumentService(t, repo, 2)

	if _, err := store.Save("del.pdf", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("seed blob: %v", err)
	}
	doc := repo.addDocument(&models.Document{Title: "doomed", Status: models.StatusApproved, UploaderID: uploader.ID, FileName: "del.pdf"})

	ctx := context.Background()

	if err := service.Delete(ctx, Actor{ID: stranger.ID, Role: stranger.Role}, doc.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete should be forbidden, got %v", err)
	}

	if err := service.Delete(ctx, Actor{ID: uploader.ID, Role: uploader.Role}, doc.ID); err != nil {
		t.Fatalf("uploader delete failed: %v", err)
	}

	if _, err := repo.Document().GetByID(ctx, doc.ID); err == nil {
		t.Fatal("document row should be gone")
	}
	if exists, _ := store.Exists("del.pdf"); exists {
		t.Fatal("blob should be gone")
	}
}
