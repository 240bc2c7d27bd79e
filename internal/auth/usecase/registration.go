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

type RegistrationInput struct {
	LastName  string `validate:"required,alphaspace"`
	Name      string `validate:"required,alphaspace"`
	Email     string `validate:"required,email"`
	Mobile    string `validate:"required,mobile"`
	VerifyOTP string
	ClientIP  string
}

type RegistrationOutput struct {
	Msg          string
	Email        string
	Mobile       string
	AccessToken  string
	RefreshToken string
}

// Registration is the dual-channel flow: without VerifyOTP it arms one shared
// code for both the email and the mobile destination and reports delivery per
// channel; with VerifyOTP it validates against the email destination, creates
// the account when needed, and logs the user in.
func (s *Usecase) Registration(ctx context.Context, in RegistrationInput) (*RegistrationOutput, error) {
	ctx, span := s.startSpan(ctx, "Registration")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	mobile := strings.TrimSpace(in.Mobile)

	if err := s.checkRegistrationConflicts(ctx, email, mobile); err != nil {
		return nil, err
	}

	if in.VerifyOTP == "" {
		return s.sendRegistrationCodes(ctx, email, mobile)
	}

	out, err := s.validateOTP(ctx, email, in.VerifyOTP)
	if err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, otpMismatchError(out)
	}

	user, err := s.createRegisteredUser(ctx, in, email, mobile)
	if err != nil {
		return nil, err
	}

	tokens, err := s.loginUser(ctx, user, in.ClientIP)
	if err != nil {
		return nil, err
	}

	return &RegistrationOutput{
		Msg:          "Registration successful",
		Email:        user.Email,
		Mobile:       user.Mobile,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// checkRegistrationConflicts applies the conflict matrix against existing
// ownership of the email and mobile destinations.
func (s *Usecase) checkRegistrationConflicts(ctx context.Context, email, mobile string) error {
	byEmail, err := s.repoDB.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	byMobile, err := s.repoDB.GetUserByMobile(ctx, mobile)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by mobile", "mobile", mobile, "error", err)
		return goerror.NewServer(err)
	}

	switch {
	case byEmail != nil && byMobile != nil && byEmail.ID == byMobile.ID:
		slog.WarnContext(ctx, "registration for already registered account", "user_id", byEmail.ID)
		return goerror.NewBusiness("Account already registered", goerror.CodeConflict)

	case byEmail != nil:
		slog.WarnContext(ctx, "registration email owned by another account", "email", email)
		return goerror.NewBusiness(
			"This email is already registered with a different mobile number. Log in with your phone number via OTP instead.",
			goerror.CodeConflict,
		)

	case byMobile != nil:
		slog.WarnContext(ctx, "registration mobile owned by another account", "mobile", mobile)
		return goerror.NewBusiness(
			"This mobile number is already registered with a different email. Log in with your email via OTP instead.",
			goerror.CodeConflict,
		)

	default:
		return nil
	}
}

func (s *Usecase) sendRegistrationCodes(ctx context.Context, email, mobile string) (*RegistrationOutput, error) {
	emailRec, err := s.issueOTP(ctx, entity.KindEmail, email)
	if err != nil {
		return nil, err
	}

	mobileRec, err := s.issueOTP(ctx, entity.KindMobile, mobile)
	if err != nil {
		return nil, err
	}

	// Both channels must carry the same code; the user proves control of
	// either one with a single entry.
	if err := s.alignOTPCode(ctx, mobileRec, emailRec.Code); err != nil {
		return nil, err
	}

	emailMsg, emailErr := s.sendOTP(ctx, emailRec, "")
	if emailErr != nil {
		emailMsg = deliveryFailureMessage(emailErr)
	}

	mobileMsg, mobileErr := s.sendOTP(ctx, mobileRec, email)
	if mobileErr != nil {
		mobileMsg = deliveryFailureMessage(mobileErr)
	}

	combined := fmt.Sprintf("email: %s; mobile: %s", emailMsg, mobileMsg)
	if emailErr != nil && mobileErr != nil {
		slog.ErrorContext(ctx, "both registration channels failed", "email", email, "mobile", mobile)
		return nil, goerror.NewBusiness(combined, goerror.CodeInternal)
	}

	return &RegistrationOutput{Msg: combined, Email: email, Mobile: mobile}, nil
}

func (s *Usecase) createRegisteredUser(ctx context.Context, in RegistrationInput, email, mobile string) (*entity.User, error) {
	// The account has no usable password; access is through OTP login until
	// the user sets one via password reset.
	unusable, err := s.bcrypt.Hash(s.uuid.Generate())
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash placeholder password", "error", err)
		return nil, goerror.NewServer(err)
	}

	user := entity.NewUser{
		ID:       s.uid.Generate(),
		Username: mobile,
		Email:    email,
		Mobile:   mobile,
		Name:     strings.TrimSpace(in.Name),
		LastName: strings.TrimSpace(in.LastName),
		Password: string(unusable),
		IsActive: true,
	}

	if err := s.repoDB.CreateUser(ctx, user); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			return nil, goerror.NewBusiness("Account already registered", goerror.CodeConflict)
		}
		slog.ErrorContext(ctx, "failed to repo create user", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return s.repoMessaging.PublishUserRegistered(ctx, UserRegisteredEvent{
			UserID:   user.ID,
			Email:    user.Email,
			Mobile:   user.Mobile,
			FullName: strings.TrimSpace(user.Name + " " + user.LastName),
		})
	})

	return &entity.User{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Mobile:   user.Mobile,
		Name:     user.Name,
		LastName: user.LastName,
		Password: user.Password,
		IsActive: user.IsActive,
	}, nil
}

func deliveryFailureMessage(err error) string {
	var gerr *goerror.Error
	if errors.As(err, &gerr) && gerr.Msg() != "" {
		return gerr.Msg()
	}
	return "delivery failed"
}
