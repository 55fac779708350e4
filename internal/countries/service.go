package countries

import (
	"context"
	"strings"

	"amani-backend/internal/models"
	"amani-backend/internal/pkg/apperrors"
	"amani-backend/internal/pkg/iso"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages country reference rows. Codes are explicit ISO 3166-1
// alpha-2, validated against the static table — never derived from the name.
type Service struct {
	DB *gorm.DB
}

type CountryInput struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (s *Service) Create(ctx context.Context, in CountryInput) (*models.Country, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("name", "Name is required")
	}
	code := iso.Normalize(in.Code)
	if !iso.ValidAlpha2(code) {
		return nil, apperrors.Validation("code", "Code must be a valid ISO 3166-1 alpha-2 country code")
	}

	var existing models.Country
	err := s.DB.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("A country with this name already exists")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	country := &models.Country{Name: name, Code: code}
	if err := s.DB.WithContext(ctx).Create(country).Error; err != nil {
		return nil, err
	}
	return country, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in CountryInput) (*models.Country, error) {
	var country models.Country
	if err := s.DB.WithContext(ctx).Where("country_id = ?", id).First(&country).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Country")
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != "" {
		name := strings.TrimSpace(in.Name)
		if !strings.EqualFold(name, country.Name) {
			var other models.Country
			err := s.DB.WithContext(ctx).Where("LOWER(name) = LOWER(?) AND country_id <> ?", name, id).First(&other).Error
			if err == nil {
				return nil, apperrors.Conflict("A country with this name already exists")
			}
			if err != gorm.ErrRecordNotFound {
				return nil, err
			}
		}
		updates["name"] = name
	}
	if in.Code != "" {
		code := iso.Normalize(in.Code)
		if !iso.ValidAlpha2(code) {
			return nil, apperrors.Validation("code", "Code must be a valid ISO 3166-1 alpha-2 country code")
		}
		updates["code"] = code
	}

	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&country).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &country, nil
}

// Delete is blocked while a non-deleted project still references the
// country. Stricter than unconditional removal: a dangling country_id would
// surface as a missing name in every projection.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var country models.Country
		if err := tx.Where("country_id = ?", id).First(&country).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("Country")
			}
			return err
		}
		var refs int64
		if err := tx.Model(&models.Project{}).Where("country_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return apperrors.Conflict("Country has active projects")
		}
		return tx.Delete(&country).Error
	})
}

func (s *Service) List(ctx context.Context) ([]models.Country, error) {
	var countries []models.Country
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&countries).Error; err != nil {
		return nil, err
	}
	return countries, nil
}
