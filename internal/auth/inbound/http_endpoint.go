package inbound

import (
	"github.com/samber/lo"
	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/auth/usecase"
	"github.com/sc619/authd/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for authentication and account workflows.
type HTTPEndpoint struct {
	uc uc
}

// OTP issues or verifies a one-time passcode for a single destination.
// @Summary One-time passcode flow
// @Description Without verify_otp, arms and delivers a passcode to the destination (email or phone). With verify_otp, validates the code and optionally logs the user in or confirms a secondary mobile number.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body OTPRequest true "OTP payload"
// @Success 200 {object} router.successResponse{data=OTPResponse} "Flow result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Incorrect code"
// @Failure 404 {object} router.errorResponse "No account or active code for this destination"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Resend cooldown active"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /otp [post]
func (h *HTTPEndpoint) OTP(r *router.Request) (any, error) {
	var req OTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OTP(r.Context(), usecase.OTPInput{
		Destination:   req.Destination,
		VerifyOTP:     req.VerifyOTP,
		IsLogin:       req.IsLogin,
		Email:         req.Email,
		ExtraMobileID: req.ExtraMobileID,
		ClientIP:      r.RemoteAddr,
	})
	if err != nil {
		return nil, err
	}

	return OTPResponse{
		Msg:          resp.Msg,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// Registration runs the dual-channel registration flow.
// @Summary Register via dual-channel passcode
// @Description Without verify_otp, arms one shared code for the email and mobile destinations and reports delivery per channel. With verify_otp, validates the code, creates the account, and returns tokens.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Registration payload"
// @Success 200 {object} router.successResponse{data=RegistrationResponse} "Flow result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Incorrect code"
// @Failure 409 {object} router.errorResponse "Email or mobile already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /registration [post]
func (h *HTTPEndpoint) Registration(r *router.Request) (any, error) {
	var req RegistrationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Registration(r.Context(), usecase.RegistrationInput{
		LastName:  req.LastName,
		Name:      req.Name,
		Email:     req.Email,
		Mobile:    req.Mobile,
		VerifyOTP: req.VerifyOTP,
		ClientIP:  r.RemoteAddr,
	})
	if err != nil {
		return nil, err
	}

	return RegistrationResponse{
		Msg:          resp.Msg,
		Email:        resp.Email,
		Mobile:       resp.Mobile,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// Login authenticates with username and password.
// @Summary Authenticate user
// @Description Validates credentials and returns access/refresh tokens.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 403 {object} router.errorResponse "Account deactivated"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
		ClientIP: r.RemoteAddr,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// RefreshToken issues a new access token against an existing session.
// @Summary Refresh access token
// @Description Exchanges a refresh token for a new access token. The refresh token is not rotated.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token payload"
// @Success 200 {object} router.successResponse{data=RefreshTokenResponse} "Token refresh result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid refresh token"
// @Failure 404 {object} router.errorResponse "Session not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /refresh-token [post]
func (h *HTTPEndpoint) RefreshToken(r *router.Request) (any, error) {
	var req RefreshTokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RefreshToken(r.Context(), usecase.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		return nil, err
	}

	return RefreshTokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// PasswordReset sets a new password after passcode verification.
// @Summary Reset password
// @Description Sets a new password for the account owning the email, after the passcode sent to that email is verified.
// @Tags Authentication
// @Accept json
// @Param request body PasswordResetRequest true "Password reset payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Incorrect code"
// @Failure 404 {object} router.errorResponse "No account found for this email"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /password-reset [post]
func (h *HTTPEndpoint) PasswordReset(r *router.Request) (any, error) {
	var req PasswordResetRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.PasswordReset(r.Context(), usecase.PasswordResetInput{
		Email:       req.Email,
		OTP:         req.OTP,
		NewPassword: req.NewPassword,
	})
}

// CheckUnique reports whether a value is free for a user field.
// @Summary Check value uniqueness
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body CheckUniqueRequest true "Uniqueness check payload"
// @Success 200 {object} router.successResponse{data=CheckUniqueResponse} "Uniqueness result"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /check-unique [post]
func (h *HTTPEndpoint) CheckUnique(r *router.Request) (any, error) {
	var req CheckUniqueRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.CheckUnique(r.Context(), usecase.CheckUniqueInput{
		Property: req.Property,
		Value:    req.Value,
	})
	if err != nil {
		return nil, err
	}

	return CheckUniqueResponse{Unique: resp.Unique}, nil
}

// Profile returns the authenticated user's profile with addresses and
// secondary mobile numbers.
// @Summary Get profile
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Profile result"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/profile [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		ID:           resp.ID,
		Username:     resp.Username,
		Email:        resp.Email,
		Mobile:       resp.Mobile,
		Name:         resp.Name,
		LastName:     resp.LastName,
		LastLogin:    resp.LastLogin,
		DateJoined:   resp.DateJoined,
		Addresses:    lo.Map(resp.Addresses, func(a entity.Address, _ int) AddressResponse { return toAddressResponse(a) }),
		ExtraMobiles: lo.Map(resp.ExtraMobiles, func(m entity.ExtraMobile, _ int) ExtraMobileResponse { return toExtraMobileResponse(m) }),
	}, nil
}

// ProfileUpdate patches the user's display name and optionally the password.
// @Summary Update profile
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Param request body UpdateProfileRequest true "Profile update payload"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/profile [patch]
func (h *HTTPEndpoint) ProfileUpdate(r *router.Request) (any, error) {
	var req UpdateProfileRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.ProfileUpdate(r.Context(), usecase.ProfileUpdateInput{
		Name:     req.Name,
		LastName: req.LastName,
		Password: req.Password,
	})
}

// @Summary List delivery addresses
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=AddressesResponse} "Address list"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/addresses [get]
func (h *HTTPEndpoint) AddressList(r *router.Request) (any, error) {
	resp, err := h.uc.AddressList(r.Context())
	if err != nil {
		return nil, err
	}

	return AddressesResponse{
		Addresses: lo.Map(resp.Addresses, func(a entity.Address, _ int) AddressResponse { return toAddressResponse(a) }),
	}, nil
}

// @Summary Create delivery address
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body AddressRequest true "Address payload"
// @Success 200 {object} router.successResponse{data=AddressCreateResponse} "Created address ID"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/addresses [post]
func (h *HTTPEndpoint) AddressCreate(r *router.Request) (any, error) {
	var req AddressRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.AddressCreate(r.Context(), usecase.AddressCreateInput{
		City:      req.City,
		Street:    req.Street,
		House:     req.House,
		Apartment: req.Apartment,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return nil, err
	}

	return AddressCreateResponse{ID: resp.ID}, nil
}

// @Summary Update delivery address
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Param id path int true "Address ID"
// @Param request body AddressRequest true "Address payload"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Address not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/addresses/{id} [put]
func (h *HTTPEndpoint) AddressUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req AddressRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.AddressUpdate(r.Context(), usecase.AddressUpdateInput{
		ID:        id,
		City:      req.City,
		Street:    req.Street,
		House:     req.House,
		Apartment: req.Apartment,
		IsDefault: req.IsDefault,
	})
}

// @Summary Delete delivery address
// @Tags Profile
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Address not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/addresses/{id} [delete]
func (h *HTTPEndpoint) AddressDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.AddressDelete(r.Context(), usecase.AddressDeleteInput{ID: id})
}

// @Summary List secondary mobile numbers
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=ExtraMobilesResponse} "Secondary mobile list"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/mobiles [get]
func (h *HTTPEndpoint) MobileList(r *router.Request) (any, error) {
	resp, err := h.uc.MobileList(r.Context())
	if err != nil {
		return nil, err
	}

	return ExtraMobilesResponse{
		Mobiles: lo.Map(resp.Mobiles, func(m entity.ExtraMobile, _ int) ExtraMobileResponse { return toExtraMobileResponse(m) }),
	}, nil
}

// MobileAdd registers an unconfirmed secondary number. Confirmation goes
// through the OTP flow with the returned ID.
// @Summary Add secondary mobile number
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body MobileAddRequest true "Secondary mobile payload"
// @Success 200 {object} router.successResponse{data=MobileAddResponse} "Created secondary mobile ID"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 409 {object} router.errorResponse "Number already in use"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/mobiles [post]
func (h *HTTPEndpoint) MobileAdd(r *router.Request) (any, error) {
	var req MobileAddRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.MobileAdd(r.Context(), usecase.MobileAddInput{Mobile: req.Mobile})
	if err != nil {
		return nil, err
	}

	return MobileAddResponse{ID: resp.ID}, nil
}

// @Summary Delete secondary mobile number
// @Tags Profile
// @Security BearerAuth
// @Param id path int true "Secondary mobile ID"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Secondary mobile not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/mobiles/{id} [delete]
func (h *HTTPEndpoint) MobileDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.MobileDelete(r.Context(), usecase.MobileDeleteInput{ID: id})
}
