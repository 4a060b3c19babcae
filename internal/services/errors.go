package services

import "errors"

// Domain errors returned by the service layer. Handlers map these onto
// HTTP status codes.
var (
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrForbidden indicates the caller lacks the required role or plan.
	ErrForbidden = errors.New("forbidden")

	// ErrPaymentRequired indicates the free document quota is exhausted.
	ErrPaymentRequired = errors.New("free document limit reached")

	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDocumentNotFound indicates the document does not exist or is not
	// visible to the caller.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrFileMissing indicates the document row exists but its stored file
	// is gone.
	ErrFileMissing = errors.New("document file missing")

	// ErrConflict indicates an invalid state transition, such as reviewing
	// a document that already reached a terminal status.
	ErrConflict = errors.New("conflicting document state")

	// ErrUpstream indicates the question generation service failed.
	ErrUpstream = errors.New("question service unavailable")

	// ErrBillingNotConfigured indicates billing endpoints were called
	// without a configured provider.
	ErrBillingNotConfigured = errors.New("billing not configured")

	// ErrValidation wraps request validation failures.
	ErrValidation = errors.New("validation failed")
)

// ValidationFailure carries field level validation details alongside
// ErrValidation for errors.As extraction in handlers.
type ValidationFailure struct {
	Details []FieldError
}

// FieldError is one failed field rule in a ValidationFailure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v *ValidationFailure) Error() string {
	return ErrValidation.Error()
}

func (v *ValidationFailure) Unwrap() error {
	return ErrValidation
}
