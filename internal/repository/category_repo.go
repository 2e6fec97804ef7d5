package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop_service/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const categoryExistsMessage = "Category with this name already exists"

type CategoryRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewCategoryRepository(db *sql.DB, logger *logrus.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:  db,
		log: logger,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, category.Name, nullString(category.Description)).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warnf("Repository: Attempted to create category with duplicate name: %s", category.Name)
			return nil, domain.NewConflictError(categoryExistsMessage)
		}
		r.log.Errorf("Repository: Failed to create category '%s': %v", category.Name, err)
		return nil, fmt.Errorf("could not create category: %w", err)
	}
	category.Products = []domain.ProductSummary{}

	r.log.Infof("Repository: Category created with ID: %s, Name: %s", category.ID, category.Name)
	return category, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM categories WHERE id = $1`
	category := &domain.Category{}
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&category.ID, &category.Name, &description, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Category with ID %s not found", id)
			return nil, domain.NewNotFoundError("Category not found")
		}
		r.log.Errorf("Repository: Failed to get category by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get category by id: %w", err)
	}
	category.Description = description.String

	products, err := r.productsByCategory(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	category.Products = products[id]
	if category.Products == nil {
		category.Products = []domain.ProductSummary{}
	}
	return category, nil
}

func (r *CategoryRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.log.Errorf("Repository: Failed to check category %s: %v", id, err)
		return false, fmt.Errorf("could not check category: %w", err)
	}
	return exists, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		UPDATE categories
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, category.Name, nullString(category.Description), category.ID).
		Scan(&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warnf("Repository: Attempted to update category ID %s with duplicate name: %s", category.ID, category.Name)
			return nil, domain.NewConflictError(categoryExistsMessage)
		}
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Category with ID %s not found for update", category.ID)
			return nil, domain.NewNotFoundError("Category not found")
		}
		r.log.Errorf("Repository: Failed to update category ID %s: %v", category.ID, err)
		return nil, fmt.Errorf("could not update category: %w", err)
	}

	r.log.Infof("Repository: Category updated with ID: %s", category.ID)
	return category, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			r.log.Warnf("Repository: Category %s still referenced by products", id)
			return domain.NewConflictError("Cannot delete category with associated products")
		}
		r.log.Errorf("Repository: Failed to delete category ID %s: %v", id, err)
		return fmt.Errorf("could not delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after deleting category ID %s: %v", id, err)
		return fmt.Errorf("could not confirm category deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent category ID %s", id)
		return domain.NewNotFoundError("Category not found")
	}

	r.log.Infof("Repository: Category deleted with ID: %s", id)
	return nil
}

// List returns every category, newest first, with its products.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM categories ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Repository: Failed to list categories: %v", err)
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	ids := []uuid.UUID{}
	for rows.Next() {
		var category domain.Category
		var description sql.NullString
		if err := rows.Scan(&category.ID, &category.Name, &description, &category.CreatedAt, &category.UpdatedAt); err != nil {
			r.log.Errorf("Repository: Failed to scan category row: %v", err)
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		category.Description = description.String
		categories = append(categories, category)
		ids = append(ids, category.ID)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during categories list iteration: %v", err)
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	if len(categories) == 0 {
		return categories, nil
	}

	products, err := r.productsByCategory(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i].Products = products[categories[i].ID]
		if categories[i].Products == nil {
			categories[i].Products = []domain.ProductSummary{}
		}
	}

	r.log.Infof("Repository: Retrieved %d categories", len(categories))
	return categories, nil
}

func (r *CategoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&count)
	if err != nil {
		r.log.Errorf("Repository: Failed to count products of category %s: %v", id, err)
		return 0, fmt.Errorf("could not count category products: %w", err)
	}
	return count, nil
}

func (r *CategoryRepository) productsByCategory(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.ProductSummary, error) {
	query := `
		SELECT category_id, id, name, price, image_url, stock
		FROM products
		WHERE category_id = ANY($1::uuid[])
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		r.log.Errorf("Repository: Failed to query products for categories: %v", err)
		return nil, fmt.Errorf("could not retrieve category products: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]domain.ProductSummary)
	for rows.Next() {
		var categoryID uuid.UUID
		var p domain.ProductSummary
		var imageURL sql.NullString
		if err := rows.Scan(&categoryID, &p.ID, &p.Name, &p.Price, &imageURL, &p.Stock); err != nil {
			r.log.Errorf("Repository: Failed to scan category product row: %v", err)
			return nil, fmt.Errorf("error scanning category product: %w", err)
		}
		p.ImageURL = imageURL.String
		result[categoryID] = append(result[categoryID], p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category products: %w", err)
	}
	return result, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
