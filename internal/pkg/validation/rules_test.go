package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slot struct {
	Date string `validate:"isodate"`
	Time string `validate:"clock"`
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	tests := []struct {
		name  string
		slot  slot
		field string
	}{
		{"valid", slot{Date: "2025-06-01", Time: "09:30"}, ""},
		{"seconds allowed", slot{Date: "2025-06-01", Time: "09:30:00"}, ""},
		{"bad month", slot{Date: "2025-13-01", Time: "09:30"}, "Date"},
		{"slashes", slot{Date: "01/06/2025", Time: "09:30"}, "Date"},
		{"bad hour", slot{Date: "2025-06-01", Time: "25:00"}, "Time"},
		{"empty time", slot{Date: "2025-06-01"}, "Time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.slot)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var errs validator.ValidationErrors
			require.ErrorAs(t, err, &errs)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field())
		})
	}
}
