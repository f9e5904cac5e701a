package validation

import (
	"testing"
	"time"

	"github.com/vnykmshr/taskflow/pkg/common/errors"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		wantError bool
	}{
		{"positive value", 10, false},
		{"positive value 1", 1, false},
		{"zero value", 0, true},
		{"negative value", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("test", "count", tt.value)
			checkResult(t, err, tt.wantError)
		})
	}
}

func TestValidateNonNegative(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		wantError bool
	}{
		{"positive value", 4, false},
		{"zero value", 0, false},
		{"negative value", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNonNegative("test", "workers", tt.value)
			checkResult(t, err, tt.wantError)
		})
	}
}

func TestValidatePositiveDuration(t *testing.T) {
	tests := []struct {
		name      string
		value     time.Duration
		wantError bool
	}{
		{"positive", time.Millisecond, false},
		{"zero", 0, true},
		{"negative", -time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositiveDuration("test", "interval", tt.value)
			checkResult(t, err, tt.wantError)
		})
	}
}

func TestValidateNotNil(t *testing.T) {
	tests := []struct {
		name      string
		value     interface{}
		wantError bool
	}{
		{"non-nil int", 123, false},
		{"non-nil func", func() {}, false},
		{"nil value", nil, true},
		{"nil pointer", (*int)(nil), true},
		{"nil func", (func())(nil), true},
		{"nil map", map[string]int(nil), true},
		{"empty slice", []int{}, false},
		{"zero struct", struct{}{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNotNil("test", "config", tt.value)
			checkResult(t, err, tt.wantError)
		})
	}
}

func TestValidateNotEmpty(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantError bool
	}{
		{"non-empty string", "value", false},
		{"whitespace", " ", false},
		{"empty string", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNotEmpty("test", "name", tt.value)
			checkResult(t, err, tt.wantError)
		})
	}
}

func TestValidateMaxLength(t *testing.T) {
	if err := ValidateMaxLength("timer", "id", "abc", 3); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	checkResult(t, ValidateMaxLength("timer", "id", "abcd", 3), true)
}

func TestValidationErrorDetails(t *testing.T) {
	err := ValidatePositive("scheduler", "TryCycles", -5)

	valErr, ok := err.(*errors.ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if valErr.Module != "scheduler" {
		t.Errorf("Module = %q, want %q", valErr.Module, "scheduler")
	}
	if valErr.Field != "TryCycles" {
		t.Errorf("Field = %q, want %q", valErr.Field, "TryCycles")
	}
	if valErr.Value != -5 {
		t.Errorf("Value = %v, want %v", valErr.Value, -5)
	}
	if valErr.Hint != "value must be greater than 0" {
		t.Errorf("Hint = %q, want %q", valErr.Hint, "value must be greater than 0")
	}

	empty := ValidateNotEmpty("config", "key", "").(*errors.ValidationError)
	if empty.Hint != "provide a non-empty key" {
		t.Errorf("Hint = %q, want contains 'key'", empty.Hint)
	}
}

func checkResult(t *testing.T, err error, wantError bool) {
	t.Helper()
	if !wantError {
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		return
	}
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}
