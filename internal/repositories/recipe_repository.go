package repositories

import (
	"context"

	"github.com/easyeats/easyeats/internal/models"
)

// RecipeRepository defines the data access contract for recipes. Every lookup is
// scoped to the owning user.
type RecipeRepository interface {
	Create(ctx context.Context, recipe models.Recipe) error
	ListByOwner(ctx context.Context, ownerUID string) ([]models.Recipe, error)
	Find(ctx context.Context, ownerUID, id string) (models.Recipe, error)
	Update(ctx context.Context, recipe models.Recipe) error
	Delete(ctx context.Context, ownerUID, id string) error
}
