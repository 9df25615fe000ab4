package registration

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	addressmodels "simohu/internal/address/models"
	usermodels "simohu/internal/user/models"
)

// AddressLookup resolves a postal code. (nil, nil) means "no data".
type AddressLookup interface {
	Lookup(ctx context.Context, cep string) (*addressmodels.Address, error)
}

// UserCreator submits the combined registration payload.
type UserCreator interface {
	Create(ctx context.Context, req usermodels.CreateUserRequest) (*usermodels.CreateUserResponse, error)
}
