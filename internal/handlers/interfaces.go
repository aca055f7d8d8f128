package handlers

import (
	"context"

	"github.com/easyeats/easyeats/internal/models"
	"github.com/easyeats/easyeats/internal/storage"
)

// ProfileStore captures the persistence operations required by the profile handlers.
type ProfileStore interface {
	Create(ctx context.Context, profile models.UserProfile) error
	FindByUID(ctx context.Context, firebaseUID string) (models.UserProfile, error)
	Update(ctx context.Context, profile models.UserProfile) error
}

// RecipeStore captures the persistence operations required by the recipe handlers.
type RecipeStore interface {
	Create(ctx context.Context, recipe models.Recipe) error
	ListByOwner(ctx context.Context, ownerUID string) ([]models.Recipe, error)
	Find(ctx context.Context, ownerUID, id string) (models.Recipe, error)
	Update(ctx context.Context, recipe models.Recipe) error
	Delete(ctx context.Context, ownerUID, id string) error
}

// ImageStorage persists uploaded images and returns where they can be fetched.
type ImageStorage interface {
	SaveImage(ctx context.Context, folder, owner string, img storage.Image) (string, error)
	DeleteImage(ctx context.Context, location string) error
}
