package repository

import (
	"context"
	"fmt"

	"local-services/internal/data/entity"
	"local-services/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository struct {
	User     UserRepository
	Provider ProviderRepository
	Admin    AdminRepository
	Service  ServiceRepository
	Booking  BookingRepository
	Review   ReviewRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:     NewUserRepository(db, log),
		Provider: NewProviderRepository(db, log),
		Admin:    NewAdminRepository(db, log),
		Service:  NewServiceRepository(db, log),
		Booking:  NewBookingRepository(db, log),
		Review:   NewReviewRepository(db, log),
	}
}

// FindAccount resolves any authenticated principal through one role-keyed
// lookup. Returns (nil, nil) when no row matches.
func (r *Repository) FindAccount(ctx context.Context, role entity.Role, id uuid.UUID) (*entity.Account, error) {
	switch role {
	case entity.RoleUser:
		user, err := r.User.FindByID(ctx, id)
		if err != nil || user == nil {
			return nil, err
		}
		return user.Account(), nil

	case entity.RoleProvider:
		provider, err := r.Provider.FindByID(ctx, id)
		if err != nil || provider == nil {
			return nil, err
		}
		return provider.Account(), nil

	case entity.RoleAdmin:
		admin, err := r.Admin.FindByID(ctx, id)
		if err != nil || admin == nil {
			return nil, err
		}
		return admin.Account(), nil

	default:
		return nil, fmt.Errorf("invalid role %q", role)
	}
}
