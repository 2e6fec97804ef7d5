// Package seed loads the demo users, categories and products.
package seed

import (
	"context"
	"fmt"

	"shop_service/internal/domain"

	"github.com/sirupsen/logrus"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type demoUser struct {
	email, password, firstName, lastName string
	role                                 domain.Role
}

type demoProduct struct {
	name, description, category, imageURL string
	price                                 float64
	stock                                 int
}

var users = []demoUser{
	{"admin@example.com", "admin123", "Admin", "User", domain.RoleAdmin},
	{"customer@example.com", "customer123", "John", "Doe", domain.RoleCustomer},
}

var categories = []domain.Category{
	{Name: "Electronics", Description: "Latest electronic gadgets and devices"},
	{Name: "Clothing", Description: "Fashionable clothing for all seasons"},
	{Name: "Books", Description: "Educational and entertaining books"},
	{Name: "Home & Kitchen", Description: "Home appliances and kitchen tools"},
}

var products = []demoProduct{
	{"iPhone 14 Pro", "Latest Apple smartphone with advanced features", "Electronics", "https://res.cloudinary.com/demo/image/upload/v1633456789/iphone14.jpg", 999.99, 50},
	{"Samsung Galaxy S23", "Powerful Android smartphone", "Electronics", "https://res.cloudinary.com/demo/image/upload/v1633456789/galaxy-s23.jpg", 849.99, 75},
	{"MacBook Pro", "High-performance laptop for professionals", "Electronics", "https://res.cloudinary.com/demo/image/upload/v1633456789/macbook-pro.jpg", 1999.99, 25},
	{"Cotton T-Shirt", "Comfortable cotton t-shirt for everyday wear", "Clothing", "https://res.cloudinary.com/demo/image/upload/v1633456789/tshirt.jpg", 19.99, 100},
	{"JavaScript: The Good Parts", "Essential JavaScript programming book", "Books", "https://res.cloudinary.com/demo/image/upload/v1633456789/javascript-book.jpg", 29.99, 30},
	{"Coffee Maker", "Automatic drip coffee maker", "Home & Kitchen", "https://res.cloudinary.com/demo/image/upload/v1633456789/coffee-maker.jpg", 79.99, 40},
}

// Summary counts the rows created by one Run.
type Summary struct {
	Users      int
	Categories int
	Products   int
}

type Seeder struct {
	users      domain.UserRepository
	categories domain.CategoryRepository
	products   domain.ProductRepository
	hasher     PasswordHasher
	log        *logrus.Logger
}

func NewSeeder(u domain.UserRepository, c domain.CategoryRepository, p domain.ProductRepository, hasher PasswordHasher, logger *logrus.Logger) *Seeder {
	return &Seeder{
		users:      u,
		categories: c,
		products:   p,
		hasher:     hasher,
		log:        logger,
	}
}

// Run inserts whatever demo data is missing. Rows that already exist are
// left untouched, so it can be run repeatedly.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	for _, u := range users {
		hash, err := s.hasher.Hash(u.password)
		if err != nil {
			return sum, fmt.Errorf("hash password for %s: %w", u.email, err)
		}
		_, err = s.users.CreateWithCart(ctx, &domain.User{
			Email:        u.email,
			PasswordHash: hash,
			Role:         u.role,
			FirstName:    u.firstName,
			LastName:     u.lastName,
		})
		switch {
		case err == nil:
			sum.Users++
		case domain.IsKind(err, domain.KindConflict):
			s.log.Infof("Seed: user %s already exists, skipping", u.email)
		default:
			return sum, fmt.Errorf("seed user %s: %w", u.email, err)
		}
	}

	existing, err := s.categories.List(ctx)
	if err != nil {
		return sum, fmt.Errorf("list categories: %w", err)
	}
	byName := make(map[string]domain.Category, len(existing))
	for _, c := range existing {
		byName[c.Name] = c
	}

	for _, c := range categories {
		if _, ok := byName[c.Name]; ok {
			s.log.Infof("Seed: category %s already exists, skipping", c.Name)
			continue
		}
		category := c
		created, err := s.categories.Create(ctx, &category)
		if err != nil {
			return sum, fmt.Errorf("seed category %s: %w", c.Name, err)
		}
		byName[created.Name] = *created
		sum.Categories++
	}

	for _, p := range products {
		category, ok := byName[p.category]
		if !ok {
			return sum, fmt.Errorf("seed product %s: category %s missing", p.name, p.category)
		}
		if hasProduct(category, p.name) {
			s.log.Infof("Seed: product %s already exists, skipping", p.name)
			continue
		}
		if _, err := s.products.Create(ctx, &domain.Product{
			Name:        p.name,
			Description: p.description,
			Price:       p.price,
			Stock:       p.stock,
			ImageURL:    p.imageURL,
			CategoryID:  category.ID,
		}); err != nil {
			return sum, fmt.Errorf("seed product %s: %w", p.name, err)
		}
		sum.Products++
	}

	s.log.Infof("Seed data created: %d users, %d categories, %d products", sum.Users, sum.Categories, sum.Products)
	return sum, nil
}

func hasProduct(c domain.Category, name string) bool {
	for _, p := range c.Products {
		if p.Name == name {
			return true
		}
	}
	return false
}
