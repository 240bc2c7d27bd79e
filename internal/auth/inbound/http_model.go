package inbound

import (
	"time"

	"github.com/sc619/authd/internal/auth/entity"
)

type OTPRequest struct {
	Destination   string `json:"destination"`
	VerifyOTP     string `json:"verify_otp,omitempty"`
	IsLogin       bool   `json:"is_login,omitempty"`
	Email         string `json:"email,omitempty"`
	ExtraMobileID int64  `json:"extra_mobile_id,omitempty"`
}

type OTPResponse struct {
	Msg          string `json:"msg"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type RegistrationRequest struct {
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	VerifyOTP string `json:"verify_otp,omitempty"`
}

type RegistrationResponse struct {
	Msg          string `json:"msg"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type PasswordResetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

type CheckUniqueRequest struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

type CheckUniqueResponse struct {
	Unique bool `json:"unique"`
}

type ProfileResponse struct {
	ID           int64                 `json:"id,string"`
	Username     string                `json:"username"`
	Email        string                `json:"email"`
	Mobile       string                `json:"mobile"`
	Name         string                `json:"name"`
	LastName     string                `json:"last_name"`
	LastLogin    *time.Time            `json:"last_login,omitempty"`
	DateJoined   time.Time             `json:"date_joined"`
	Addresses    []AddressResponse     `json:"addresses"`
	ExtraMobiles []ExtraMobileResponse `json:"extra_mobiles"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name,omitempty"`
	LastName string `json:"last_name,omitempty"`
	Password string `json:"password,omitempty"`
}

type AddressRequest struct {
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house"`
	Apartment string `json:"apartment,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
}

type AddressResponse struct {
	ID        int64  `json:"id,string"`
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house"`
	Apartment string `json:"apartment,omitempty"`
	IsDefault bool   `json:"is_default"`
}

type AddressCreateResponse struct {
	ID int64 `json:"id,string"`
}

type AddressesResponse struct {
	Addresses []AddressResponse `json:"addresses"`
}

type ExtraMobileResponse struct {
	ID        int64  `json:"id,string"`
	Mobile    string `json:"mobile"`
	Confirmed bool   `json:"confirmed"`
}

type ExtraMobilesResponse struct {
	Mobiles []ExtraMobileResponse `json:"mobiles"`
}

type MobileAddRequest struct {
	Mobile string `json:"mobile"`
}

type MobileAddResponse struct {
	ID int64 `json:"id,string"`
}

func toAddressResponse(a entity.Address) AddressResponse {
	return AddressResponse{
		ID:        a.ID,
		City:      a.City,
		Street:    a.Street,
		House:     a.House,
		Apartment: a.Apartment,
		IsDefault: a.IsDefault,
	}
}

func toExtraMobileResponse(m entity.ExtraMobile) ExtraMobileResponse {
	return ExtraMobileResponse{
		ID:        m.ID,
		Mobile:    m.Mobile,
		Confirmed: m.Confirmed,
	}
}
