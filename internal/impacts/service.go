package impacts

import (
	"context"
	"strings"

	"amani-backend/internal/models"
	"amani-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service is the impact ledger. It owns every write to Impact.current_value:
// project composition applies deltas through ApplyContributionDelta inside
// its own transaction, Recalculate rebuilds totals from source rows, and the
// administrative override on Update is the only other path.
type Service struct {
	DB *gorm.DB
}

type CreateImpactInput struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Unit          string `json:"unit"`
	StartingValue int64  `json:"starting_value"`
	Icon          string `json:"icon"`
	Color         string `json:"color"`
	OrderIndex    int    `json:"order_index"`
	IsActive      *bool  `json:"is_active"`
	IsFeatured    *bool  `json:"is_featured"`
}

// Create inserts a new impact with current_value seeded from starting_value
// (no contributions exist yet).
func (s *Service) Create(ctx context.Context, in CreateImpactInput) (*models.Impact, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.Validation("name", "Name is required")
	}
	if in.StartingValue < 0 {
		return nil, apperrors.Validation("starting_value", "Starting value must be zero or positive")
	}
	if in.OrderIndex < 0 {
		return nil, apperrors.Validation("order_index", "Order index must be zero or positive")
	}

	name := strings.TrimSpace(in.Name)
	var existing models.Impact
	err := s.DB.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("An impact with this name already exists")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	isFeatured := false
	if in.IsFeatured != nil {
		isFeatured = *in.IsFeatured
	}

	impact := &models.Impact{
		Name:          name,
		Description:   in.Description,
		Unit:          in.Unit,
		StartingValue: in.StartingValue,
		CurrentValue:  in.StartingValue,
		Icon:          in.Icon,
		Color:         in.Color,
		OrderIndex:    in.OrderIndex,
		IsActive:      isActive,
		IsFeatured:    isFeatured,
	}
	if err := s.DB.WithContext(ctx).Create(impact).Error; err != nil {
		return nil, err
	}
	return impact, nil
}

// UpdateImpactInput carries optional field updates. CurrentValue is the
// administrative override used to correct drift; StartingValue is write-once
// and deliberately absent.
type UpdateImpactInput struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Unit         *string `json:"unit"`
	CurrentValue *int64  `json:"current_value"`
	Icon         *string `json:"icon"`
	Color        *string `json:"color"`
	OrderIndex   *int    `json:"order_index"`
	IsActive     *bool   `json:"is_active"`
	IsFeatured   *bool   `json:"is_featured"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateImpactInput) (*models.Impact, error) {
	var impact models.Impact
	if err := s.DB.WithContext(ctx).Where("impact_id = ?", id).First(&impact).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Impact")
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.Validation("name", "Name cannot be empty")
		}
		if !strings.EqualFold(name, impact.Name) {
			var other models.Impact
			err := s.DB.WithContext(ctx).Where("LOWER(name) = LOWER(?) AND impact_id <> ?", name, id).First(&other).Error
			if err == nil {
				return nil, apperrors.Conflict("An impact with this name already exists")
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
	if in.Unit != nil {
		updates["unit"] = *in.Unit
	}
	if in.CurrentValue != nil {
		if *in.CurrentValue < 0 {
			return nil, apperrors.Validation("current_value", "Current value must be zero or positive")
		}
		updates["current_value"] = *in.CurrentValue
	}
	if in.Icon != nil {
		updates["icon"] = *in.Icon
	}
	if in.Color != nil {
		updates["color"] = *in.Color
	}
	if in.OrderIndex != nil {
		if *in.OrderIndex < 0 {
			return nil, apperrors.Validation("order_index", "Order index must be zero or positive")
		}
		updates["order_index"] = *in.OrderIndex
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.IsFeatured != nil {
		updates["is_featured"] = *in.IsFeatured
	}

	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&impact).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if err := s.DB.WithContext(ctx).Where("impact_id = ?", id).First(&impact).Error; err != nil {
		return nil, err
	}
	return &impact, nil
}

// Delete removes an impact and cascades removal of its contribution rows.
// Blocked while any non-deleted project still contributes to it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var impact models.Impact
		if err := tx.Where("impact_id = ?", id).First(&impact).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("Impact")
			}
			return err
		}

		var refs int64
		err := tx.Model(&models.ProjectImpact{}).
			Joins(`JOIN "Projects" p ON p.project_id = "ProjectImpacts".project_id AND p.deleted_at IS NULL`).
			Where(`"ProjectImpacts".impact_id = ?`, id).
			Count(&refs).Error
		if err != nil {
			return err
		}
		if refs > 0 {
			return apperrors.Conflict("Impact has active projects")
		}

		if err := tx.Where("impact_id = ?", id).Delete(&models.ProjectImpact{}).Error; err != nil {
			return err
		}
		return tx.Delete(&impact).Error
	})
}

// ListFilter narrows List by the optional is_active / is_featured flags.
type ListFilter struct {
	IsActive   *bool
	IsFeatured *bool
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Impact, error) {
	q := s.DB.WithContext(ctx).Model(&models.Impact{})
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.IsFeatured != nil {
		q = q.Where("is_featured = ?", *f.IsFeatured)
	}
	var impacts []models.Impact
	if err := q.Order("order_index ASC, created_at ASC").Find(&impacts).Error; err != nil {
		return nil, err
	}
	return impacts, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Impact, error) {
	var impact models.Impact
	if err := s.DB.WithContext(ctx).Where("impact_id = ?", id).First(&impact).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Impact")
		}
		return nil, err
	}
	return &impact, nil
}

// ApplyContributionDelta atomically adds delta to an impact's current_value.
// Callers must pass the transaction that also writes the ProjectImpact row:
// the total update and the row write commit or roll back together. The
// SQL-level increment serializes concurrent deltas on the same impact via
// the row lock, so no read-modify-write race is possible.
func (s *Service) ApplyContributionDelta(tx *gorm.DB, impactID uuid.UUID, delta int64) error {
	if delta == 0 {
		return nil
	}
	res := tx.Model(&models.Impact{}).
		Where("impact_id = ?", impactID).
		UpdateColumn("current_value", gorm.Expr("current_value + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Impact")
	}
	return nil
}

// Recalculate rebuilds every impact's current_value from source rows:
// starting_value plus the sum of contributions over non-deleted projects,
// hidden or not. Idempotent; the repair path for drift from partial
// failures. Orphaned contribution rows (impact or project gone) are
// integrity faults: logged and removed, never surfaced to the caller.
func (s *Service) Recalculate(ctx context.Context) ([]models.Impact, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orphans := tx.Exec(`
			DELETE FROM "ProjectImpacts"
			WHERE impact_id NOT IN (SELECT impact_id FROM "Impacts" WHERE deleted_at IS NULL)
			   OR project_id NOT IN (SELECT project_id FROM "Projects")`)
		if orphans.Error != nil {
			return orphans.Error
		}
		if orphans.RowsAffected > 0 {
			log.Warn().Int64("rows", orphans.RowsAffected).Msg("Recalculate removed orphaned contribution rows")
		}

		return tx.Exec(`
			UPDATE "Impacts"
			SET current_value = starting_value + COALESCE((
				SELECT SUM(pi.contribution_value)
				FROM "ProjectImpacts" pi
				JOIN "Projects" p ON p.project_id = pi.project_id AND p.deleted_at IS NULL
				WHERE pi.impact_id = "Impacts".impact_id), 0)
			WHERE deleted_at IS NULL`).Error
	})
	if err != nil {
		return nil, err
	}
	return s.List(ctx, ListFilter{})
}

// Stats is the dashboard aggregate. Always computed from current rows.
type Stats struct {
	TotalImpacts        int64 `json:"total_impacts"`
	ActiveImpacts       int64 `json:"active_impacts"`
	FeaturedImpacts     int64 `json:"featured_impacts"`
	TotalImpactValue    int64 `json:"total_impact_value"`
	ProjectsWithImpacts int64 `json:"projects_with_impacts"`
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	db := s.DB.WithContext(ctx)
	var stats Stats

	if err := db.Model(&models.Impact{}).Count(&stats.TotalImpacts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Impact{}).Where("is_active = ?", true).Count(&stats.ActiveImpacts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Impact{}).Where("is_featured = ?", true).Count(&stats.FeaturedImpacts).Error; err != nil {
		return nil, err
	}

	var total struct{ Total *int64 }
	if err := db.Model(&models.Impact{}).Select("SUM(current_value) AS total").Scan(&total).Error; err != nil {
		return nil, err
	}
	if total.Total != nil {
		stats.TotalImpactValue = *total.Total
	}

	if err := db.Model(&models.ProjectImpact{}).
		Joins(`JOIN "Projects" p ON p.project_id = "ProjectImpacts".project_id AND p.deleted_at IS NULL`).
		Distinct(`"ProjectImpacts".project_id`).
		Count(&stats.ProjectsWithImpacts).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
