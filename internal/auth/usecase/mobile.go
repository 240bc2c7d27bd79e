package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/goerror"
)

type MobileListOutput struct {
	Mobiles []entity.ExtraMobile
}

func (s *Usecase) MobileList(ctx context.Context) (*MobileListOutput, error) {
	ctx, span := s.startSpan(ctx, "MobileList")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	mobiles, err := s.repoDB.GetExtraMobilesByUserID(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list secondary mobiles", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &MobileListOutput{Mobiles: mobiles}, nil
}

type MobileAddInput struct {
	Mobile string `validate:"required,mobile"`
}

type MobileAddOutput struct {
	ID int64
}

// MobileAdd registers an unconfirmed secondary number. Confirmation goes
// through the passcode flow with the returned ID.
func (s *Usecase) MobileAdd(ctx context.Context, in MobileAddInput) (*MobileAddOutput, error) {
	ctx, span := s.startSpan(ctx, "MobileAdd")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	mobile := strings.TrimSpace(in.Mobile)
	count, err := s.repoDB.CountUsersByProperty(ctx, entity.PropertyMobile, mobile)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count users by mobile", "error", err)
		return nil, goerror.NewServer(err)
	}
	if count > 0 {
		return nil, goerror.NewBusiness("This number is already in use", goerror.CodeConflict)
	}

	now := s.clock.Now()
	extra := entity.ExtraMobile{
		ID:        s.uid.Generate(),
		UserID:    clm.UserID,
		Mobile:    mobile,
		Confirmed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repoDB.CreateExtraMobile(ctx, extra); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			return nil, goerror.NewBusiness("This number is already in use", goerror.CodeConflict)
		}
		slog.ErrorContext(ctx, "failed to repo create secondary mobile", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &MobileAddOutput{ID: extra.ID}, nil
}

type MobileDeleteInput struct {
	ID int64 `validate:"required"`
}

func (s *Usecase) MobileDelete(ctx context.Context, in MobileDeleteInput) error {
	ctx, span := s.startSpan(ctx, "MobileDelete")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoDB.DeleteExtraMobile(ctx, in.ID, clm.UserID); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return goerror.NewBusiness("Secondary mobile number not found", goerror.CodeNotFound)
		}
		slog.ErrorContext(ctx, "failed to repo delete secondary mobile", "id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
