package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests.
type mockRepository struct {
	mu sync.Mutex

	users     map[uint]*models.User
	documents map[uint]*models.Document
	accesses  []*models.DocumentAccess
	audits    []*models.DownloadAudit
	sets      map[uint]*models.QuestionSet
	feedback  []*models.Feedback

	nextID uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:     make(map[uint]*models.User),
		documents: make(map[uint]*models.Document),
		sets:      make(map[uint]*models.QuestionSet),
		nextID:    1,
	}
}

func (m *mockRepository) id() uint {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockRepository) addUser(u *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		u.ID = m.id()
	}
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return u
}

func (m *mockRepository) addDocument(d *models.Document) *models.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == 0 {
		d.ID = m.id()
	}
	d.CreatedAt = time.Now()
	m.documents[d.ID] = d
	return d
}

func (m *mockRepository) User() repositories.UserRepository               { return (*mockUserRepo)(m) }
func (m *mockRepository) Document() repositories.DocumentRepository       { return (*mockDocumentRepo)(m) }
func (m *mockRepository) Access() repositories.AccessRepository           { return (*mockAccessRepo)(m) }
func (m *mockRepository) Audit() repositories.AuditRepository             { return (*mockAuditRepo)(m) }
func (m *mockRepository) QuestionSet() repositories.QuestionSetRepository { return (*mockSetRepo)(m) }
func (m *mockRepository) Feedback() repositories.FeedbackRepository       { return (*mockFeedbackRepo)(m) }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== users =====

type mockUserRepo mockRepository

func (r *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	(*mockRepository)(r).addUser(user)
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockUserRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r *mockUserRepo) UpdatePlan(ctx context.Context, id uint, plan models.PlanStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Plan = plan
	return nil
}

func (r *mockUserRepo) UpdateRole(ctx context.Context, id uint, role models.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Role = role
	return nil
}

// ===== documents =====

type mockDocumentRepo mockRepository

func (r *mockDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	(*mockRepository)(r).addDocument(doc)
	return nil
}

func (r *mockDocumentRepo) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.documents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *mockDocumentRepo) GetByIDWithUploader(ctx context.Context, id uint) (*models.Document, error) {
	doc, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[doc.UploaderID]; ok {
		cp := *u
		doc.Uploader = &cp
	}
	return doc, nil
}

func (r *mockDocumentRepo) UpdateStatus(ctx context.Context, id uint, status models.DocumentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.documents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Status = status
	return nil
}

func (r *mockDocumentRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.documents[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.documents, id)
	return nil
}

func (r *mockDocumentRepo) List(ctx context.Context, filters repositories.DocumentFilters) ([]*models.Document, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Document
	for _, d := range r.documents {
		if filters.Status != nil && d.Status != *filters.Status {
			continue
		}
		if filters.CourseCode != nil && d.CourseCode != *filters.CourseCode {
			continue
		}
		if filters.Kind != nil && d.Kind != *filters.Kind {
			continue
		}
		if filters.UploaderID != nil && d.UploaderID != *filters.UploaderID {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

// ===== accesses =====

type mockAccessRepo mockRepository

func (r *mockAccessRepo) Create(ctx context.Context, access *models.DocumentAccess) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	access.ID = (*mockRepository)(r).id()
	access.CreatedAt = time.Now()
	r.accesses = append(r.accesses, access)
	return nil
}

func (r *mockAccessRepo) Exists(ctx context.Context, userID, documentID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accesses {
		if a.UserID == userID && a.DocumentID == documentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockAccessRepo) CountByUser(ctx context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.accesses {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *mockAccessRepo) ListDocumentIDs(ctx context.Context, userID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for _, a := range r.accesses {
		if a.UserID == userID {
			ids = append(ids, a.DocumentID)
		}
	}
	return ids, nil
}

func (r *mockAccessRepo) DeleteByDocument(ctx context.Context, documentID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.accesses[:0]
	for _, a := range r.accesses {
		if a.DocumentID != documentID {
			kept = append(kept, a)
		}
	}
	r.accesses = kept
	return nil
}

// ===== audits =====

type mockAuditRepo mockRepository

func (r *mockAuditRepo) Create(ctx context.Context, audit *models.DownloadAudit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	audit.ID = (*mockRepository)(r).id()
	audit.CreatedAt = time.Now()
	r.audits = append(r.audits, audit)
	return nil
}

func (r *mockAuditRepo) List(ctx context.Context, filters repositories.AuditFilters) ([]*models.DownloadAudit, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.DownloadAudit
	for _, a := range r.audits {
		if filters.UserID != nil && (a.UserID == nil || *a.UserID != *filters.UserID) {
			continue
		}
		if filters.DocumentID != nil && a.DocumentID != *filters.DocumentID {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockAuditRepo) DeleteByDocument(ctx context.Context, documentID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.audits[:0]
	for _, a := range r.audits {
		if a.DocumentID != documentID {
			kept = append(kept, a)
		}
	}
	r.audits = kept
	return nil
}

// ===== question sets =====

type mockSetRepo mockRepository

func (r *mockSetRepo) GetByDocumentID(ctx context.Context, documentID uint) (*models.QuestionSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[documentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *mockSetRepo) Upsert(ctx context.Context, set *models.QuestionSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sets[set.DocumentID]; ok {
		set.ID = existing.ID
	} else {
		set.ID = (*mockRepository)(r).id()
	}
	cp := *set
	r.sets[set.DocumentID] = &cp
	return nil
}

func (r *mockSetRepo) DeleteByDocument(ctx context.Context, documentID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sets, documentID)
	return nil
}

// ===== feedback =====

type mockFeedbackRepo mockRepository

func (r *mockFeedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	feedback.ID = (*mockRepository)(r).id()
	feedback.CreatedAt = time.Now()
	r.feedback = append(r.feedback, feedback)
	return nil
}

func (r *mockFeedbackRepo) List(ctx context.Context, filters repositories.FeedbackFilters) ([]*models.Feedback, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Feedback
	for _, f := range r.feedback {
		if filters.UserID != nil && (f.UserID == nil || *f.UserID != *filters.UserID) {
			continue
		}
		if filters.DocumentID != nil && (f.DocumentID == nil || *f.DocumentID != *filters.DocumentID) {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}
