package usecase

import (
	"context"
	"strings"

	"shop_service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProductUseCase struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	assets       domain.AssetStorage
	log          *logrus.Logger
}

func NewProductUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, assets domain.AssetStorage, logger *logrus.Logger) *ProductUseCase {
	return &ProductUseCase{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		assets:       assets,
		log:          logger,
	}
}

func (uc *ProductUseCase) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	var problems fieldErrors
	name := ""
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if name == "" {
		problems.add("name", "Name is required")
	}
	if in.Price == nil || *in.Price < 0 {
		problems.add("price", "Price must be a number greater than or equal to 0")
	}
	if in.Stock == nil || *in.Stock < 0 {
		problems.add("stock", "Stock must be an integer greater than or equal to 0")
	}
	if in.CategoryID == nil {
		problems.add("categoryId", "Category ID must be a valid UUID")
	}
	if err := problems.err(); err != nil {
		uc.log.Warnf("Use Case: Product creation rejected: %v", problems)
		return nil, err
	}

	if err := uc.requireCategory(ctx, *in.CategoryID); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:       name,
		Price:      *in.Price,
		Stock:      *in.Stock,
		CategoryID: *in.CategoryID,
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}

	if in.Image != nil {
		imageURL, err := uc.assets.Upload(ctx, in.Image)
		if err != nil {
			uc.log.Errorf("Use Case: Image upload failed for new product '%s': %v", name, err)
			return nil, err
		}
		product.ImageURL = imageURL
	}

	created, err := uc.productRepo.Create(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", name, err)
		uc.discardAsset(ctx, product.ImageURL)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created with ID %s", created.Name, created.ID)
	return created, nil
}

func (uc *ProductUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return uc.productRepo.GetByID(ctx, id)
}

func (uc *ProductUseCase) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, domain.Pagination, error) {
	filter.Page = domain.NewPageRequest(filter.Page.Page, filter.Page.Limit)
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)

	products, total, err := uc.productRepo.List(ctx, filter)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list products: %v", err)
		return nil, domain.Pagination{}, err
	}
	return products, domain.NewPagination(filter.Page, total), nil
}

// Update applies the non-nil fields of in. A new image is stored before the
// row is saved; the previous image is removed afterwards on a best-effort basis.
func (uc *ProductUseCase) Update(ctx context.Context, id uuid.UUID, in domain.ProductInput) (*domain.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var problems fieldErrors
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name == "" {
			problems.add("name", "Name is required")
		} else {
			product.Name = name
		}
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			problems.add("price", "Price must be a number greater than or equal to 0")
		}
		product.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			problems.add("stock", "Stock must be an integer greater than or equal to 0")
		}
		product.Stock = *in.Stock
	}
	if err := problems.err(); err != nil {
		return nil, err
	}

	if in.CategoryID != nil && *in.CategoryID != product.CategoryID {
		if err := uc.requireCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}

	oldImage := product.ImageURL
	if in.Image != nil {
		imageURL, err := uc.assets.Upload(ctx, in.Image)
		if err != nil {
			uc.log.Errorf("Use Case: Image upload failed for product %s: %v", id, err)
			return nil, err
		}
		product.ImageURL = imageURL
	}

	updated, err := uc.productRepo.Update(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update product %s: %v", id, err)
		if in.Image != nil {
			uc.discardAsset(ctx, product.ImageURL)
		}
		return nil, err
	}

	if in.Image != nil {
		uc.discardAsset(ctx, oldImage)
	}

	uc.log.Infof("Use Case: Product %s updated", id)
	return updated, nil
}

// Delete removes the product row, then its image on a best-effort basis.
func (uc *ProductUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.productRepo.Delete(ctx, id); err != nil {
		uc.log.Errorf("Use Case: Repository failed to delete product %s: %v", id, err)
		return err
	}
	uc.discardAsset(ctx, product.ImageURL)

	uc.log.Infof("Use Case: Product %s deleted", id)
	return nil
}

func (uc *ProductUseCase) requireCategory(ctx context.Context, id uuid.UUID) error {
	exists, err := uc.categoryRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		uc.log.Warnf("Use Case: Category %s not found", id)
		return domain.NewNotFoundError("Category not found")
	}
	return nil
}

func (uc *ProductUseCase) discardAsset(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := uc.assets.Delete(ctx, url); err != nil {
		uc.log.Warnf("Use Case: Failed to delete image %s: %v", url, err)
	}
}
