package validator

// Validator bundles struct validation and business rules behind one
// dependency handed to the service layer.
type Validator struct {
	*BusinessValidator
}

func NewValidator() *Validator {
	return &Validator{BusinessValidator: NewBusinessValidator()}
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.BusinessValidator
}
