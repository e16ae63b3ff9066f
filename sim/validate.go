package sim

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateEntity runs struct validation and wraps failures as ErrInvalidEntity.
func validateEntity(kind string, v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidEntity, kind, err)
	}
	return nil
}
