package validator

import "testing"

func TestV10Validator(t *testing.T) {
	// Arrange
	var v Validator
	v10, err := NewV10Validator()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	v = v10

	type form struct {
		Name     string `validate:"required,alphaspace"`
		Mobile   string `validate:"required,mobile"`
		Password string `validate:"required,password"`
	}

	t.Run("Valid", func(t *testing.T) {
		// Act
		err := v.Validate(form{Name: "Dana Reyes", Mobile: "+15550001111", Password: "long-enough-1"})

		// Assert
		if err != nil {
			t.Fatalf("expected pass, got %v", err)
		}
	})

	t.Run("CustomRulesRejected", func(t *testing.T) {
		// Act
		err := v.Validate(form{Name: "Dana2", Mobile: "555", Password: "short"})

		// Assert
		if err == nil {
			t.Fatalf("expected validation failure")
		}
		verr, ok := err.(V10ValidationError)
		if !ok {
			t.Fatalf("expected V10ValidationError, got %T", err)
		}
		for _, field := range []string{"name", "mobile", "password"} {
			if _, found := verr.Values()[field]; !found {
				t.Fatalf("expected error for %q, got %v", field, verr.Values())
			}
		}
	})
}
