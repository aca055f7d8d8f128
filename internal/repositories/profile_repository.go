package repositories

import (
	"context"

	"github.com/easyeats/easyeats/internal/models"
)

// ProfileRepository defines the data access contract for user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile models.UserProfile) error
	FindByUID(ctx context.Context, firebaseUID string) (models.UserProfile, error)
	Update(ctx context.Context, profile models.UserProfile) error
}
