package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/parishscheduler/internal/pkg/helpers"
)

// Custom binding tags
const (
	// TagDate accepts a YYYY-MM-DD calendar day
	TagDate = "isodate"
	// TagClock accepts an HH:MM clock time
	TagClock = "clock"
)

var rules = map[string]validator.Func{
	TagDate:  validDate,
	TagClock: validClock,
}

// Register installs the custom rules on v
func Register(v *validator.Validate) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %q validation: %w", tag, err)
		}
	}
	return nil
}

func validDate(fl validator.FieldLevel) bool {
	_, err := helpers.ParseDate(fl.Field().String())
	return err == nil
}

func validClock(fl validator.FieldLevel) bool {
	_, err := helpers.ParseClock(fl.Field().String())
	return err == nil
}
