package usecase

import (
	"context"
	"testing"

	"github.com/sc619/authd/internal/auth/entity"
)

func TestCheckUnique(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	env.seedUser(t, entity.User{
		ID:       4,
		Username: "dana",
		Email:    "dana@example.com",
		Mobile:   "+15550001111",
	})

	cases := []struct {
		name     string
		property string
		value    string
		unique   bool
	}{
		{"FreeEmail", "email", "new@example.com", true},
		{"TakenEmail", "email", "dana@example.com", false},
		{"TakenEmailDifferentCase", "email", "DANA@example.com", false},
		{"TakenMobile", "mobile", "+15550001111", false},
		{"FreeUsername", "username", "someone", true},
		{"TakenUsername", "username", "dana", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			out, err := env.uc.CheckUnique(context.Background(), CheckUniqueInput{
				Property: tc.property,
				Value:    tc.value,
			})

			// Assert
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if out.Unique != tc.unique {
				t.Fatalf("expected unique=%v for %s %q", tc.unique, tc.property, tc.value)
			}
		})
	}

	t.Run("UnknownProperty", func(t *testing.T) {
		// Act
		_, err := env.uc.CheckUnique(context.Background(), CheckUniqueInput{
			Property: "nickname",
			Value:    "dana",
		})

		// Assert
		if err == nil {
			t.Fatalf("expected validation rejection")
		}
	})
}
