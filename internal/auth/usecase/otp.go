package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/goerror"
)

type OTPInput struct {
	Destination   string `validate:"required"`
	VerifyOTP     string
	IsLogin       bool
	Email         string `validate:"omitempty,email"`
	ExtraMobileID int64
	ClientIP      string
}

type OTPOutput struct {
	Msg          string
	AccessToken  string
	RefreshToken string
}

// OTP is the single-destination passcode flow: without VerifyOTP it arms and
// sends a code; with VerifyOTP it validates the code and either logs the user
// in or confirms a secondary mobile number.
func (s *Usecase) OTP(ctx context.Context, in OTPInput) (*OTPOutput, error) {
	ctx, span := s.startSpan(ctx, "OTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	destination := strings.TrimSpace(in.Destination)
	kind := entity.ClassifyDestination(destination)
	if kind == entity.KindUnknown {
		return nil, goerror.NewInvalidInput(nil, "destination", "must be an email address or phone number")
	}

	user, err := s.findUserByDestination(ctx, kind, destination)
	if err != nil {
		return nil, err
	}

	if in.IsLogin && user == nil {
		slog.WarnContext(ctx, "login requested for unknown destination", "destination", destination)
		return nil, goerror.NewBusiness("No account found for this destination", goerror.CodeNotFound)
	}

	var extraMobile *entity.ExtraMobile
	if in.ExtraMobileID != 0 {
		if kind != entity.KindMobile {
			return nil, goerror.NewInvalidInput(nil, "extra_mobile_id", "requires a phone number destination")
		}

		extraMobile, err = s.repoDB.GetExtraMobileByID(ctx, in.ExtraMobileID)
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("Secondary mobile number not found", goerror.CodeNotFound)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get secondary mobile", "id", in.ExtraMobileID, "error", err)
			return nil, goerror.NewServer(err)
		}

		if extraMobile.Mobile != destination {
			return nil, goerror.NewInvalidInput(nil, "extra_mobile_id", "does not match the destination number")
		}
	}

	if in.VerifyOTP == "" {
		rec, err := s.issueOTP(ctx, kind, destination)
		if err != nil {
			return nil, err
		}

		fallback := in.Email
		if fallback == "" && user != nil {
			fallback = user.Email
		}

		msg, err := s.sendOTP(ctx, rec, fallback)
		if err != nil {
			return nil, err
		}

		return &OTPOutput{Msg: msg}, nil
	}

	out, err := s.validateOTP(ctx, destination, in.VerifyOTP)
	if err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, otpMismatchError(out)
	}

	if in.IsLogin {
		tokens, err := s.loginUser(ctx, user, in.ClientIP)
		if err != nil {
			return nil, err
		}

		return &OTPOutput{
			Msg:          "Login successful",
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		}, nil
	}

	if extraMobile != nil {
		if err := s.repoDB.ConfirmExtraMobile(ctx, extraMobile.ID); err != nil {
			slog.ErrorContext(ctx, "failed to repo confirm secondary mobile", "id", extraMobile.ID, "error", err)
			return nil, goerror.NewServer(err)
		}

		return &OTPOutput{Msg: "Mobile number confirmed"}, nil
	}

	return &OTPOutput{Msg: "Code verified"}, nil
}

func (s *Usecase) findUserByDestination(ctx context.Context, kind entity.DestinationKind, destination string) (*entity.User, error) {
	var user *entity.User
	var err error
	if kind == entity.KindEmail {
		user, err = s.repoDB.GetUserByEmail(ctx, destination)
	} else {
		user, err = s.repoDB.GetUserByMobile(ctx, destination)
	}

	if errors.Is(err, goerror.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by destination", "destination", destination, "error", err)
		return nil, goerror.NewServer(err)
	}

	return user, nil
}

func otpMismatchError(out otpValidation) error {
	if out.Reissued {
		return goerror.NewBusiness(
			"Incorrect code. The attempt limit was reached and a new code was generated; request delivery again.",
			goerror.CodeUnauthorized,
		)
	}

	return goerror.NewBusiness(
		fmt.Sprintf("Incorrect code. %d attempt(s) remaining.", out.Remaining),
		goerror.CodeUnauthorized,
	)
}
