package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hasan-ston/forstudents/internal/models"
)

var courseCodePattern = regexp.MustCompile(`^[A-Za-z]{2,8}[0-9]{2,4}[A-Za-z0-9-]*$`)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateUpload validates document upload fields together with the file
// itself.
func (bv *BusinessValidator) ValidateUpload(req *DocumentUploadRequest, fileName string, fileSize int64, maxBytes int64) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if !strings.EqualFold(strings.TrimPrefix(fileExt(fileName), "."), "pdf") {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: "only PDF files are accepted",
			Value:   fileName,
			Rule:    "file_type",
		})
	}

	if fileSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: "file is empty",
			Rule:    "file_size",
		})
	} else if maxBytes > 0 && fileSize > maxBytes {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file exceeds the %d byte limit", maxBytes),
			Value:   fileSize,
			Rule:    "file_size",
		})
	}

	return errors
}

// ValidateStatusTransition validates document review transitions. Only a
// pending document may be moved, and approved/rejected are terminal.
func (bv *BusinessValidator) ValidateStatusTransition(current, target models.DocumentStatus) ValidationErrors {
	var errors ValidationErrors

	allowedTransitions := map[models.DocumentStatus][]models.DocumentStatus{
		models.StatusPending:  {models.StatusApproved, models.StatusRejected},
		models.StatusApproved: {},
		models.StatusRejected: {},
	}

	allowed := false
	for _, allowedStatus := range allowedTransitions[current] {
		if target == allowedStatus {
			allowed = true
			break
		}
	}

	if !allowed {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", current, target),
			Value:   target,
			Rule:    "status_transition",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Title validation (1-200 characters after trimming)
	bv.validate.RegisterValidation("document_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Course code validation, e.g. CS101 or MATH2040-A
	bv.validate.RegisterValidation("course_code", func(fl validator.FieldLevel) bool {
		code := strings.TrimSpace(fl.Field().String())
		return courseCodePattern.MatchString(code)
	})

	// document kind validation
	bv.validate.RegisterValidation("document_kind", func(fl validator.FieldLevel) bool {
		kind := fl.Field().String()
		validKinds := []models.DocumentKind{models.KindPaper, models.KindSolution}
		for _, vk := range validKinds {
			if models.DocumentKind(kind) == vk {
				return true
			}
		}
		return false
	})

	// plan status validation
	bv.validate.RegisterValidation("plan_status", func(fl validator.FieldLevel) bool {
		plan := fl.Field().String()
		validPlans := []models.PlanStatus{models.PlanFree, models.PlanPaid}
		for _, vp := range validPlans {
			if models.PlanStatus(plan) == vp {
				return true
			}
		}
		return false
	})
}

func fileExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx:]
}
