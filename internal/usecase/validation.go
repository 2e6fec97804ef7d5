package usecase

import (
	"shop_service/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// fieldErrors collects input problems and turns them into one validation error.
type fieldErrors []domain.FieldError

func (f *fieldErrors) add(path, msg string) {
	*f = append(*f, domain.FieldError{Path: path, Msg: msg})
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return domain.NewValidationError("Validation failed", f...)
}

func isEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
