package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/goerror"
)

type CheckUniqueInput struct {
	Property string `validate:"required,oneof=email mobile username"`
	Value    string `validate:"required"`
}

type CheckUniqueOutput struct {
	Unique bool
}

// CheckUnique reports whether a value is still free for the given user field.
func (s *Usecase) CheckUnique(ctx context.Context, in CheckUniqueInput) (*CheckUniqueOutput, error) {
	ctx, span := s.startSpan(ctx, "CheckUnique")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	prop := entity.UniqueProperty(strings.ToLower(in.Property))
	if !prop.IsValid() {
		return nil, goerror.NewInvalidInput(nil, "property", "must be one of email, mobile, username")
	}

	count, err := s.repoDB.CountUsersByProperty(ctx, prop, strings.TrimSpace(in.Value))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count users", "property", prop, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &CheckUniqueOutput{Unique: count == 0}, nil
}
