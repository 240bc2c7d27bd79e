package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/goerror"
)

type AddressListOutput struct {
	Addresses []entity.Address
}

func (s *Usecase) AddressList(ctx context.Context) (*AddressListOutput, error) {
	ctx, span := s.startSpan(ctx, "AddressList")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	addresses, err := s.repoDB.GetAddressesByUserID(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list addresses", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &AddressListOutput{Addresses: addresses}, nil
}

type AddressCreateInput struct {
	City      string `validate:"required"`
	Street    string `validate:"required"`
	House     string `validate:"required"`
	Apartment string
	IsDefault bool
}

type AddressCreateOutput struct {
	ID int64
}

func (s *Usecase) AddressCreate(ctx context.Context, in AddressCreateInput) (*AddressCreateOutput, error) {
	ctx, span := s.startSpan(ctx, "AddressCreate")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	address := entity.Address{
		ID:        s.uid.Generate(),
		UserID:    clm.UserID,
		City:      in.City,
		Street:    in.Street,
		House:     in.House,
		Apartment: in.Apartment,
		IsDefault: in.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repoDB.CreateAddress(ctx, address); err != nil {
		slog.ErrorContext(ctx, "failed to repo create address", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &AddressCreateOutput{ID: address.ID}, nil
}

type AddressUpdateInput struct {
	ID        int64  `validate:"required"`
	City      string `validate:"required"`
	Street    string `validate:"required"`
	House     string `validate:"required"`
	Apartment string
	IsDefault bool
}

func (s *Usecase) AddressUpdate(ctx context.Context, in AddressUpdateInput) error {
	ctx, span := s.startSpan(ctx, "AddressUpdate")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	existing, err := s.repoDB.GetAddressByID(ctx, in.ID, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("Address not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get address", "id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	existing.City = in.City
	existing.Street = in.Street
	existing.House = in.House
	existing.Apartment = in.Apartment
	existing.IsDefault = in.IsDefault
	existing.UpdatedAt = s.clock.Now()
	if err := s.repoDB.UpdateAddress(ctx, *existing); err != nil {
		slog.ErrorContext(ctx, "failed to repo update address", "id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

type AddressDeleteInput struct {
	ID int64 `validate:"required"`
}

func (s *Usecase) AddressDelete(ctx context.Context, in AddressDeleteInput) error {
	ctx, span := s.startSpan(ctx, "AddressDelete")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoDB.DeleteAddress(ctx, in.ID, clm.UserID); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return goerror.NewBusiness("Address not found", goerror.CodeNotFound)
		}
		slog.ErrorContext(ctx, "failed to repo delete address", "id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
