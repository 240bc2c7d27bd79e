package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/goerror"
)

type ProfileOutput struct {
	ID           int64
	Username     string
	Email        string
	Mobile       string
	Name         string
	LastName     string
	LastLogin    *time.Time
	DateJoined   time.Time
	Addresses    []entity.Address
	ExtraMobiles []entity.ExtraMobile
}

func (s *Usecase) Profile(ctx context.Context) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.repoDB.GetUserByID(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	addresses, err := s.repoDB.GetAddressesByUserID(ctx, user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list addresses", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	mobiles, err := s.repoDB.GetExtraMobilesByUserID(ctx, user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list secondary mobiles", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ProfileOutput{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Mobile:       user.Mobile,
		Name:         user.Name,
		LastName:     user.LastName,
		LastLogin:    user.LastLogin,
		DateJoined:   user.DateJoined,
		Addresses:    addresses,
		ExtraMobiles: mobiles,
	}, nil
}

type ProfileUpdateInput struct {
	Name     string `validate:"omitempty,alphaspace"`
	LastName string `validate:"omitempty,alphaspace"`
	Password string `validate:"omitempty,password"`
}

// ProfileUpdate patches the display name and, when provided, changes the
// password through the hashing path.
func (s *Usecase) ProfileUpdate(ctx context.Context, in ProfileUpdateInput) error {
	ctx, span := s.startSpan(ctx, "ProfileUpdate")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	name := strings.TrimSpace(in.Name)
	lastName := strings.TrimSpace(in.LastName)
	if name != "" || lastName != "" {
		if err := s.repoDB.UpdateUserProfile(ctx, entity.PatchUser{
			ID:       clm.UserID,
			Name:     name,
			LastName: lastName,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to repo update profile", "user_id", clm.UserID, "error", err)
			return goerror.NewServer(err)
		}
	}

	if in.Password != "" {
		hashed, err := s.bcrypt.Hash(in.Password)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash password", "user_id", clm.UserID, "error", err)
			return goerror.NewServer(err)
		}

		if err := s.repoDB.UpdateUserPassword(ctx, clm.UserID, string(hashed)); err != nil {
			slog.ErrorContext(ctx, "failed to repo update password", "user_id", clm.UserID, "error", err)
			return goerror.NewServer(err)
		}
	}

	return nil
}
