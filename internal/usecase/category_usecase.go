package usecase

import (
	"context"
	"strings"

	"shop_service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CategoryInput is a create or partial update; nil fields are unchanged.
type CategoryInput struct {
	Name        *string
	Description *string
}

type CategoryUseCase struct {
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger
}

func NewCategoryUseCase(repo domain.CategoryRepository, logger *logrus.Logger) *CategoryUseCase {
	return &CategoryUseCase{
		categoryRepo: repo,
		log:          logger,
	}
}

func (uc *CategoryUseCase) Create(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	name := ""
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if name == "" {
		uc.log.Warn("Use Case: Attempted to create category with empty name")
		return nil, domain.NewValidationError("Validation failed", domain.FieldError{Path: "name", Msg: "Name is required"})
	}

	category := &domain.Category{Name: name}
	if in.Description != nil {
		category.Description = strings.TrimSpace(*in.Description)
	}

	created, err := uc.categoryRepo.Create(ctx, category)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to create category '%s': %v", name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Category '%s' created with ID %s", created.Name, created.ID)
	return created, nil
}

func (uc *CategoryUseCase) List(ctx context.Context) ([]domain.Category, error) {
	return uc.categoryRepo.List(ctx)
}

func (uc *CategoryUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return uc.categoryRepo.GetByID(ctx, id)
}

func (uc *CategoryUseCase) Update(ctx context.Context, id uuid.UUID, in CategoryInput) (*domain.Category, error) {
	category, err := uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("Validation failed", domain.FieldError{Path: "name", Msg: "Name is required"})
		}
		category.Name = name
	}
	if in.Description != nil {
		category.Description = strings.TrimSpace(*in.Description)
	}

	if _, err := uc.categoryRepo.Update(ctx, category); err != nil {
		uc.log.Warnf("Use Case: Repository failed to update category %s: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Category %s updated", id)
	return category, nil
}

// Delete refuses to remove a category that still has products.
func (uc *CategoryUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	count, err := uc.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		uc.log.Warnf("Use Case: Category %s still has %d products", id, count)
		return domain.NewConflictError("Cannot delete category with associated products")
	}

	if err := uc.categoryRepo.Delete(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete category %s: %v", id, err)
		return err
	}

	uc.log.Infof("Use Case: Category %s deleted", id)
	return nil
}
