package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/easyeats/easyeats/internal/db"
	"github.com/easyeats/easyeats/internal/models"
)

// PostgresProfileRepository provides PostgreSQL-backed persistence for user profiles.
type PostgresProfileRepository struct {
	pool db.Pool
}

// NewPostgresProfileRepository constructs a profile repository backed by PostgreSQL.
func NewPostgresProfileRepository(pool db.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// Create persists a new profile record.
func (r *PostgresProfileRepository) Create(ctx context.Context, profile models.UserProfile) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO user_profiles (id, firebase_uid, email, first_name, last_name, bio, location, profile_picture, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, profile.ID, profile.FirebaseUID, profile.Email, profile.FirstName, profile.LastName, profile.Bio,
		profile.Location, profile.ProfilePicture, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return writeError("insert profile", err)
	}

	return nil
}

// FindByUID fetches a profile, including its recipe count, by identity provider uid.
func (r *PostgresProfileRepository) FindByUID(ctx context.Context, firebaseUID string) (models.UserProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT p.id, p.firebase_uid, p.email, p.first_name, p.last_name, p.bio, p.location,
               p.profile_picture, p.created_at, p.updated_at,
               (SELECT COUNT(*) FROM recipes r WHERE r.owner_uid = p.firebase_uid)
        FROM user_profiles p
        WHERE p.firebase_uid = $1
    `, firebaseUID)

	var (
		profile models.UserProfile
		count   int64
	)
	if err := row.Scan(&profile.ID, &profile.FirebaseUID, &profile.Email, &profile.FirstName, &profile.LastName,
		&profile.Bio, &profile.Location, &profile.ProfilePicture, &profile.CreatedAt, &profile.UpdatedAt, &count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserProfile{}, ErrNotFound
		}
		return models.UserProfile{}, fmt.Errorf("select profile by uid: %w", err)
	}

	profile.RecipeCount = int(count)
	profile.CreatedAt = profile.CreatedAt.UTC()
	profile.UpdatedAt = profile.UpdatedAt.UTC()
	return profile, nil
}

// Update modifies the mutable fields of an existing profile.
func (r *PostgresProfileRepository) Update(ctx context.Context, profile models.UserProfile) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE user_profiles
        SET email = $2, first_name = $3, last_name = $4, bio = $5, location = $6,
            profile_picture = $7, updated_at = $8
        WHERE firebase_uid = $1
    `, profile.FirebaseUID, profile.Email, profile.FirstName, profile.LastName, profile.Bio,
		profile.Location, profile.ProfilePicture, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// PostgresRecipeRepository provides PostgreSQL-backed persistence for recipes.
type PostgresRecipeRepository struct {
	pool db.Pool
}

// NewPostgresRecipeRepository constructs a recipe repository backed by PostgreSQL.
func NewPostgresRecipeRepository(pool db.Pool) *PostgresRecipeRepository {
	return &PostgresRecipeRepository{pool: pool}
}

// Create stores a new recipe record.
func (r *PostgresRecipeRepository) Create(ctx context.Context, recipe models.Recipe) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO recipes (id, owner_uid, title, description, ingredients, instructions, cooking_time, difficulty, image, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, recipe.ID, recipe.OwnerUID, recipe.Title, recipe.Description, recipe.Ingredients, recipe.Instructions,
		recipe.CookingTime, string(recipe.Difficulty), recipe.Image, recipe.CreatedAt, recipe.UpdatedAt)
	if err != nil {
		return writeError("insert recipe", err)
	}

	return nil
}

// ListByOwner returns the owner's recipes, newest first.
func (r *PostgresRecipeRepository) ListByOwner(ctx context.Context, ownerUID string) ([]models.Recipe, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, owner_uid, title, description, ingredients, instructions, cooking_time, difficulty, image, created_at, updated_at
        FROM recipes
        WHERE owner_uid = $1
        ORDER BY created_at DESC
    `, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []models.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}

	return recipes, nil
}

// Find loads a single recipe owned by ownerUID.
func (r *PostgresRecipeRepository) Find(ctx context.Context, ownerUID, id string) (models.Recipe, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_uid, title, description, ingredients, instructions, cooking_time, difficulty, image, created_at, updated_at
        FROM recipes
        WHERE id = $1 AND owner_uid = $2
    `, id, ownerUID)

	recipe, err := scanRecipe(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Recipe{}, ErrNotFound
		}
		return models.Recipe{}, fmt.Errorf("select recipe: %w", err)
	}

	return recipe, nil
}

// Update replaces the editable fields of a recipe owned by recipe.OwnerUID.
func (r *PostgresRecipeRepository) Update(ctx context.Context, recipe models.Recipe) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE recipes
        SET title = $3, description = $4, ingredients = $5, instructions = $6,
            cooking_time = $7, difficulty = $8, image = $9, updated_at = $10
        WHERE id = $1 AND owner_uid = $2
    `, recipe.ID, recipe.OwnerUID, recipe.Title, recipe.Description, recipe.Ingredients, recipe.Instructions,
		recipe.CookingTime, string(recipe.Difficulty), recipe.Image, recipe.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a recipe owned by ownerUID.
func (r *PostgresRecipeRepository) Delete(ctx context.Context, ownerUID, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM recipes
        WHERE id = $1 AND owner_uid = $2
    `, id, ownerUID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanRecipe(row pgx.Row) (models.Recipe, error) {
	var (
		recipe     models.Recipe
		difficulty string
	)
	if err := row.Scan(&recipe.ID, &recipe.OwnerUID, &recipe.Title, &recipe.Description, &recipe.Ingredients,
		&recipe.Instructions, &recipe.CookingTime, &difficulty, &recipe.Image, &recipe.CreatedAt, &recipe.UpdatedAt); err != nil {
		return models.Recipe{}, err
	}
	recipe.Difficulty = models.Difficulty(difficulty)
	recipe.CreatedAt = recipe.CreatedAt.UTC()
	recipe.UpdatedAt = recipe.UpdatedAt.UTC()
	return recipe, nil
}

var _ ProfileRepository = (*PostgresProfileRepository)(nil)
var _ RecipeRepository = (*PostgresRecipeRepository)(nil)
