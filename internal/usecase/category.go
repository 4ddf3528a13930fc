package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.uber.org/zap"
)

var errNoStorage = domain.BadRequest("File uploads are not configured")

type CategoryService struct {
	categories *crud.Factory[domain.Category, *domain.Category]
	repo       domain.CategoryRepository
	storage    domain.FileStorage
	logger     *logger.Logger
}

func NewCategoryService(
	categories *crud.Factory[domain.Category, *domain.Category],
	repo domain.CategoryRepository,
	storage domain.FileStorage,
	log *logger.Logger,
) *CategoryService {
	return &CategoryService{categories: categories, repo: repo, storage: storage, logger: log.Named("categories")}
}

func (s *CategoryService) List(ctx context.Context, params url.Values) (*crud.ListResult[domain.Category], error) {
	return s.categories.List(ctx, nil, params)
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.Get(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, payload map[string]interface{}) (*domain.Category, error) {
	return s.categories.Create(ctx, payload, categorySlug)
}

func (s *CategoryService) Update(ctx context.Context, id string, payload map[string]interface{}) (*domain.Category, error) {
	return s.categories.Update(ctx, id, payload, categorySlug)
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

// UploadImage stores an image for the category and records its URL.
func (s *CategoryService) UploadImage(ctx context.Context, id string, file FileUpload) (*domain.Category, error) {
	if s.storage == nil {
		return nil, errNoStorage
	}
	if !strings.HasPrefix(file.ContentType, "image/") {
		return nil, domain.BadRequest("Only images are allowed")
	}
	category, err := s.categories.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	fileURL, err := s.storage.Upload(ctx, "categories", file.Name, file.ContentType, file.Data)
	if err != nil {
		s.logger.Error("Failed to upload category image", zap.String("category_id", id), zap.Error(err))
		return nil, domain.Internal(err)
	}
	if err := s.repo.SetImage(ctx, category.ID, fileURL); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("No category for this id " + id)
		}
		return nil, domain.Internal(err)
	}
	s.categories.Invalidate(ctx)
	category.Image = fileURL
	return category, nil
}

func categorySlug(_ context.Context, c *domain.Category) error {
	c.Slug = makeSlug(c.NameEn)
	return nil
}
