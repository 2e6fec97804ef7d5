package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shop_service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewProductRepository(db *sql.DB, logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{
		db:  db,
		log: logger,
	}
}

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.stock, p.image_url, p.category_id,
	       p.created_at, p.updated_at, c.id, c.name, c.description
	FROM products p
	JOIN categories c ON c.id = p.category_id
`

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, description, price, stock, image_url, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query,
		product.Name,
		nullString(product.Description),
		product.Price,
		product.Stock,
		nullString(product.ImageURL),
		product.CategoryID,
	).Scan(&id)
	if err != nil {
		if mapped := r.mapWriteError(err); mapped != nil {
			return nil, mapped
		}
		r.log.Errorf("Repository: Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}

	r.log.Infof("Repository: Product created with ID: %s, Name: %s", id, product.Name)
	return r.GetByID(ctx, id)
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %s not found", id)
			return nil, domain.NewNotFoundError("Product not found")
		}
		r.log.Errorf("Repository: Failed to get product by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}
	return product, nil
}

// Update writes every mutable column of product.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, image_url = $5, category_id = $6, updated_at = NOW()
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		product.Name,
		nullString(product.Description),
		product.Price,
		product.Stock,
		nullString(product.ImageURL),
		product.CategoryID,
		product.ID,
	)
	if err != nil {
		if mapped := r.mapWriteError(err); mapped != nil {
			return nil, mapped
		}
		r.log.Errorf("Repository: Failed to update product ID %s: %v", product.ID, err)
		return nil, fmt.Errorf("could not update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not confirm product update: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Product with ID %s not found for update", product.ID)
		return nil, domain.NewNotFoundError("Product not found")
	}

	r.log.Infof("Repository: Product updated with ID: %s", product.ID)
	return r.GetByID(ctx, product.ID)
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete product ID %s: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not confirm product deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent product ID %s", id)
		return domain.NewNotFoundError("Product not found")
	}

	r.log.Infof("Repository: Product deleted with ID: %s", id)
	return nil
}

// List returns one page of products matching filter, newest first, and the
// total number of matches.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	var conditions []string
	var args []interface{}
	add := func(cond string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Category != "" {
		add("c.name = $%d", filter.Category)
	}
	if filter.MinPrice != nil {
		add("p.price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("p.price <= $%d", *filter.MaxPrice)
	}
	if filter.Search != "" {
		add("p.name ILIKE $%d", "%"+escapeLike(filter.Search)+"%")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM products p JOIN categories c ON c.id = p.category_id` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.log.Errorf("Repository: Failed to count products: %v", err)
		return nil, 0, fmt.Errorf("could not count products: %w", err)
	}

	page := filter.Page
	listQuery := productSelect + where +
		fmt.Sprintf(" ORDER BY p.created_at DESC, p.id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, listQuery, append(args, page.Limit, page.Offset())...)
	if err != nil {
		r.log.Errorf("Repository: Failed to list products: %v", err)
		return nil, 0, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.log.Errorf("Repository: Failed to scan product row: %v", err)
			return nil, 0, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, *product)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during products iteration: %v", err)
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	r.log.Infof("Repository: Retrieved %d of %d products (page %d, limit %d)", len(products), total, page.Page, page.Limit)
	return products, total, nil
}

func (r *ProductRepository) mapWriteError(err error) error {
	switch {
	case isForeignKeyViolation(err):
		r.log.Warnf("Repository: Product references a missing category: %v", err)
		return domain.NewNotFoundError("Category not found")
	case isCheckViolation(err):
		r.log.Warnf("Repository: Product violates a check constraint: %v", err)
		return domain.NewValidationError("Price and stock must not be negative")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{Category: &domain.CategoryRef{}}
	var description, imageURL, categoryDescription sql.NullString
	err := row.Scan(
		&product.ID,
		&product.Name,
		&description,
		&product.Price,
		&product.Stock,
		&imageURL,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Category.ID,
		&product.Category.Name,
		&categoryDescription,
	)
	if err != nil {
		return nil, err
	}
	product.Description = description.String
	product.ImageURL = imageURL.String
	product.Category.Description = categoryDescription.String
	return product, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
