package categories

import (
	"context"
	"strings"

	"amani-backend/internal/models"
	"amani-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages focus areas (stored as categories). Names are unique
// case-insensitively.
type Service struct {
	DB *gorm.DB
}

func (s *Service) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("name", "Name is required")
	}
	var existing models.Category
	err := s.DB.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("A focus area with this name already exists")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	category := &models.Category{Name: name}
	if err := s.DB.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("name", "Name is required")
	}
	var category models.Category
	if err := s.DB.WithContext(ctx).Where("category_id = ?", id).First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Focus area")
		}
		return nil, err
	}
	if !strings.EqualFold(name, category.Name) {
		var other models.Category
		err := s.DB.WithContext(ctx).Where("LOWER(name) = LOWER(?) AND category_id <> ?", name, id).First(&other).Error
		if err == nil {
			return nil, apperrors.Conflict("A focus area with this name already exists")
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}
	if err := s.DB.WithContext(ctx).Model(&category).Update("name", name).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete is blocked while any non-deleted project still references the focus
// area, either as its legacy category or through the multi-select join.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("category_id = ?", id).First(&category).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("Focus area")
			}
			return err
		}

		var direct int64
		if err := tx.Model(&models.Project{}).Where("category_id = ?", id).Count(&direct).Error; err != nil {
			return err
		}
		var selected int64
		if err := tx.Model(&models.ProjectFocusArea{}).
			Joins(`JOIN "Projects" p ON p.project_id = "ProjectFocusAreas".project_id AND p.deleted_at IS NULL`).
			Where(`"ProjectFocusAreas".category_id = ?`, id).
			Count(&selected).Error; err != nil {
			return err
		}
		if direct > 0 || selected > 0 {
			return apperrors.Conflict("Focus area has active projects")
		}

		if err := tx.Where("category_id = ?", id).Delete(&models.PillarCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
}

func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
