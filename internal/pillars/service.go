package pillars

import (
	"context"
	"strings"

	"amani-backend/internal/models"
	"amani-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the pillar side of the catalog: pillar CRUD, the pillar ↔
// focus-area association, and the membership check the project composer
// runs before persisting a selection.
type Service struct {
	DB *gorm.DB
}

type CreatePillarInput struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	OrderIndex  int         `json:"order_index"`
	ImageURL    *string     `json:"image_url"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

func (s *Service) Create(ctx context.Context, in CreatePillarInput) (*models.Pillar, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("name", "Name is required")
	}
	if in.OrderIndex < 0 {
		return nil, apperrors.Validation("order_index", "Order index must be zero or positive")
	}

	var existing models.Pillar
	err := s.DB.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("A pillar with this name already exists")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	pillar := &models.Pillar{
		Name:        name,
		Description: in.Description,
		OrderIndex:  in.OrderIndex,
		ImageURL:    in.ImageURL,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pillar).Error; err != nil {
			return err
		}
		return s.replaceCategories(tx, pillar.PillarID, in.CategoryIDs)
	})
	if err != nil {
		return nil, err
	}
	return pillar, nil
}

type UpdatePillarInput struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	OrderIndex  *int         `json:"order_index"`
	ImageURL    *string      `json:"image_url"`
	CategoryIDs *[]uuid.UUID `json:"category_ids"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdatePillarInput) (*models.Pillar, error) {
	var pillar models.Pillar
	if err := s.DB.WithContext(ctx).Where("pillar_id = ?", id).First(&pillar).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Pillar")
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.Validation("name", "Name cannot be empty")
		}
		if !strings.EqualFold(name, pillar.Name) {
			var other models.Pillar
			err := s.DB.WithContext(ctx).Where("LOWER(name) = LOWER(?) AND pillar_id <> ?", name, id).First(&other).Error
			if err == nil {
				return nil, apperrors.Conflict("A pillar with this name already exists")
			}
			if err != gorm.ErrRecordNotFound {
				return nil, err
			}
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.OrderIndex != nil {
		if *in.OrderIndex < 0 {
			return nil, apperrors.Validation("order_index", "Order index must be zero or positive")
		}
		updates["order_index"] = *in.OrderIndex
	}
	if in.ImageURL != nil {
		updates["image_url"] = *in.ImageURL
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&pillar).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.CategoryIDs != nil {
			if err := s.replaceCategories(tx, id, *in.CategoryIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Where("pillar_id = ?", id).First(&pillar).Error; err != nil {
		return nil, err
	}
	return &pillar, nil
}

// replaceCategories swaps the pillar's focus-area set (replace semantics).
func (s *Service) replaceCategories(tx *gorm.DB, pillarID uuid.UUID, categoryIDs []uuid.UUID) error {
	if categoryIDs == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Category{}).Where("category_id IN ?", dedup(categoryIDs)).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(dedup(categoryIDs)) {
		return apperrors.Validation("category_ids", "One or more focus areas do not exist")
	}
	if err := tx.Where("pillar_id = ?", pillarID).Delete(&models.PillarCategory{}).Error; err != nil {
		return err
	}
	for _, cid := range dedup(categoryIDs) {
		if err := tx.Create(&models.PillarCategory{PillarID: pillarID, CategoryID: cid}).Error; err != nil {
			return err
		}
	}
	return nil
}

func dedup(ids []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Delete soft-deletes a pillar, preserving historical project references.
// Blocked while a non-deleted project or team member still references it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pillar models.Pillar
		if err := tx.Where("pillar_id = ?", id).First(&pillar).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("Pillar")
			}
			return err
		}

		var projects int64
		if err := tx.Model(&models.Project{}).Where("pillar_id = ?", id).Count(&projects).Error; err != nil {
			return err
		}
		if projects > 0 {
			return apperrors.Conflict("Pillar has active projects")
		}

		var members int64
		if err := tx.Model(&models.TeamMember{}).Where("pillar_id = ?", id).Count(&members).Error; err != nil {
			return err
		}
		if members > 0 {
			return apperrors.Conflict("Pillar has active team members")
		}

		return tx.Delete(&pillar).Error
	})
}

func (s *Service) List(ctx context.Context) ([]models.Pillar, error) {
	var pillars []models.Pillar
	if err := s.DB.WithContext(ctx).Order("order_index ASC, created_at ASC").Find(&pillars).Error; err != nil {
		return nil, err
	}
	return pillars, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Pillar, error) {
	var pillar models.Pillar
	if err := s.DB.WithContext(ctx).Where("pillar_id = ?", id).First(&pillar).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Pillar")
		}
		return nil, err
	}
	return &pillar, nil
}

// ListFocusAreas returns the focus areas associated with a pillar, for the
// project composer's validation and for populating UI choices.
func (s *Service) ListFocusAreas(ctx context.Context, pillarID uuid.UUID) ([]models.Category, error) {
	if _, err := s.GetByID(ctx, pillarID); err != nil {
		return nil, err
	}
	var categories []models.Category
	err := s.DB.WithContext(ctx).Model(&models.Category{}).
		Joins(`JOIN "PillarCategories" pc ON pc.category_id = "Categories".category_id`).
		Where("pc.pillar_id = ?", pillarID).
		Order(`"Categories".name ASC`).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// ValidateSelection checks that every selected focus area belongs to the
// pillar. Returns a ValidationError naming the first offender.
func (s *Service) ValidateSelection(ctx context.Context, pillarID uuid.UUID, categoryIDs []uuid.UUID) error {
	offered, err := s.ListFocusAreas(ctx, pillarID)
	if err != nil {
		return err
	}
	allowed := make(map[uuid.UUID]struct{}, len(offered))
	for _, c := range offered {
		allowed[c.CategoryID] = struct{}{}
	}
	for _, id := range categoryIDs {
		if _, ok := allowed[id]; !ok {
			return apperrors.Validation("focus_area_ids", "Focus area "+id.String()+" does not belong to the selected pillar")
		}
	}
	return nil
}
