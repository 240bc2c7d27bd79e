package inbound

import (
	"context"

	"github.com/sc619/authd/internal/auth/usecase"
	"github.com/sc619/authd/internal/pkg/router"
)

type uc interface {
	OTP(ctx context.Context, in usecase.OTPInput) (*usecase.OTPOutput, error)
	Registration(ctx context.Context, in usecase.RegistrationInput) (*usecase.RegistrationOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	RefreshToken(ctx context.Context, in usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error)
	PasswordReset(ctx context.Context, in usecase.PasswordResetInput) error
	CheckUnique(ctx context.Context, in usecase.CheckUniqueInput) (*usecase.CheckUniqueOutput, error)

	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
	ProfileUpdate(ctx context.Context, in usecase.ProfileUpdateInput) error

	AddressList(ctx context.Context) (*usecase.AddressListOutput, error)
	AddressCreate(ctx context.Context, in usecase.AddressCreateInput) (*usecase.AddressCreateOutput, error)
	AddressUpdate(ctx context.Context, in usecase.AddressUpdateInput) error
	AddressDelete(ctx context.Context, in usecase.AddressDeleteInput) error

	MobileList(ctx context.Context) (*usecase.MobileListOutput, error)
	MobileAdd(ctx context.Context, in usecase.MobileAddInput) (*usecase.MobileAddOutput, error)
	MobileDelete(ctx context.Context, in usecase.MobileDeleteInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Authentication flows
	r.POST("/otp", end.OTP)
	r.POST("/registration", end.Registration)
	r.POST("/login", end.Login)
	r.POST("/refresh-token", end.RefreshToken)
	r.POST("/password-reset", end.PasswordReset)
	r.POST("/check-unique", end.CheckUnique)

	// User Profile (need authenticated)
	r.GET("/api/v1/profile", end.Profile)
	r.PATCH("/api/v1/profile", end.ProfileUpdate)

	// Delivery Addresses (need authenticated)
	r.GET("/api/v1/addresses", end.AddressList)
	r.POST("/api/v1/addresses", end.AddressCreate)
	r.PUT("/api/v1/addresses/:id", end.AddressUpdate)
	r.DELETE("/api/v1/addresses/:id", end.AddressDelete)

	// Secondary Mobile Numbers (need authenticated)
	r.GET("/api/v1/mobiles", end.MobileList)
	r.POST("/api/v1/mobiles", end.MobileAdd)
	r.DELETE("/api/v1/mobiles/:id", end.MobileDelete)
}
