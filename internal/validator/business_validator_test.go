package validator

import (
	"strings"
	"testing"

	"github.com/hasan-ston/forstudents/internal/models"
)

func validUploadRequest() *DocumentUploadRequest {
	return &DocumentUploadRequest{
		Title:      "Calculus Final 2023",
		CourseCode: "MATH101",
		Kind:       models.KindPaper,
	}
}

func hasRule(errs ValidationErrors, rule string) bool {
	for _, e := range errs {
		if e.Rule == rule {
			return true
		}
	}
	return false
}

func TestBusinessValidator_ValidateUpload(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name     string
		mutate   func(*DocumentUploadRequest)
		fileName string
		fileSize int64
		maxBytes int64
		wantRule string
	}{
		{"valid pdf", nil, "exam.pdf", 1024, 1 << 20, ""},
		{"uppercase extension", nil, "EXAM.PDF", 1024, 1 << 20, ""},
		{"no size limit configured", nil, "exam.pdf", 1 << 30, 0, ""},
		{"non-pdf file", nil, "exam.docx", 1024, 1 << 20, "file_type"},
		{"no extension", nil, "exam", 1024, 1 << 20, "file_type"},
		{"empty file", nil, "exam.pdf", 0, 1 << 20, "file_size"},
		{"oversize file", nil, "exam.pdf", 2 << 20, 1 << 20, "file_size"},
		{
			"blank title",
			func(r *DocumentUploadRequest) { r.Title = "   " },
			"exam.pdf", 1024, 1 << 20, "document_title",
		},
		{
			"overlong title",
			func(r *DocumentUploadRequest) { r.Title = strings.Repeat("a", 201) },
			"exam.pdf", 1024, 1 << 20, "document_title",
		},
		{
			"malformed course code",
			func(r *DocumentUploadRequest) { r.CourseCode = "101MATH" },
			"exam.pdf", 1024, 1 << 20, "course_code",
		},
		{
			"unknown kind",
			func(r *DocumentUploadRequest) { r.Kind = "poster" },
			"exam.pdf", 1024, 1 << 20, "document_kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validUploadRequest()
			if tt.mutate != nil {
				tt.mutate(req)
			}

			errs := bv.ValidateUpload(req, tt.fileName, tt.fileSize, tt.maxBytes)
			if tt.wantRule == "" {
				if errs.HasErrors() {
					t.Fatalf("expected no errors, got %v", errs)
				}
				return
			}
			if !hasRule(errs, tt.wantRule) {
				t.Fatalf("expected a %q violation, got %v", tt.wantRule, errs)
			}
		})
	}
}

func TestBusinessValidator_CourseCodes(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		code  string
		valid bool
	}{
		{"CS101", true},
		{"MATH2040", true},
		{"MATH2040-A", true},
		{"phys301", true},
		{"C1", false},
		{"101", false},
		{"MATHEMATICS101", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			req := validUploadRequest()
			req.CourseCode = tt.code
			errs := bv.Validate(req)
			got := !hasRule(errs, "course_code") && !hasRule(errs, "required")
			if got != tt.valid {
				t.Fatalf("course code %q: valid=%v, want %v (errors %v)", tt.code, got, tt.valid, errs)
			}
		})
	}
}

func TestBusinessValidator_ValidateStatusTransition(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name    string
		current models.DocumentStatus
		target  models.DocumentStatus
		allowed bool
	}{
		{"pending to approved", models.StatusPending, models.StatusApproved, true},
		{"pending to rejected", models.StatusPending, models.StatusRejected, true},
		{"approved to rejected", models.StatusApproved, models.StatusRejected, false},
		{"rejected to approved", models.StatusRejected, models.StatusApproved, false},
		{"approved back to pending", models.StatusApproved, models.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateStatusTransition(tt.current, tt.target)
			if tt.allowed && errs.HasErrors() {
				t.Fatalf("expected transition to be allowed, got %v", errs)
			}
			if !tt.allowed && !hasRule(errs, "status_transition") {
				t.Fatalf("expected a status_transition violation, got %v", errs)
			}
		})
	}
}

func TestBusinessValidator_RegisterRequest(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name  string
		req   RegisterRequest
		valid bool
	}{
		{"valid", RegisterRequest{Email: "a@campus.edu", Password: "longenough"}, true},
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "longenough"}, false},
		{"short password", RegisterRequest{Email: "a@campus.edu", Password: "short"}, false},
		{"missing email", RegisterRequest{Password: "longenough"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.Validate(&tt.req)
			if errs.HasErrors() == tt.valid {
				t.Fatalf("valid=%v but errors=%v", tt.valid, errs)
			}
		})
	}
}
