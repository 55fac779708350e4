package projects

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"amani-backend/internal/impacts"
	"amani-backend/internal/models"
	"amani-backend/internal/pillars"
	"amani-backend/internal/pkg/apperrors"
	"amani-backend/internal/uploads"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxGallerySize = 10

// Service is the project composer: it validates and persists a project
// together with its pillar, focus areas, SDG goals, testimonials and impact
// contributions in one transaction. All contribution writes go through the
// ledger's ApplyContributionDelta inside that same transaction.
type Service struct {
	DB      *gorm.DB
	Ledger  *impacts.Service
	Catalog *pillars.Service
	Storage uploads.Storage // media collaborator; may be nil when no uploads are configured
}

// ContributionInput declares a project's contribution toward one impact.
type ContributionInput struct {
	ImpactID          uuid.UUID `json:"impact_id"`
	ContributionValue int64     `json:"contribution_value"`
}

// ComposeInput is the full project payload for create and update.
type ComposeInput struct {
	Title            string
	ShortDescription string
	Description      string
	Location         string
	StartDate        *time.Time
	EndDate          *time.Time
	Status           string
	OrderIndex       int
	IsFeatured       bool
	IsHidden         bool
	PillarID         uuid.UUID
	FocusAreaIDs     []uuid.UUID
	CountryID        *uuid.UUID
	SdgGoals         []int
	Testimonials     []models.Testimonial
	GalleryURLs      []string
	FeaturedImageURL *string
	Contributions    []ContributionInput
}

func (s *Service) validate(ctx context.Context, in *ComposeInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperrors.Validation("title", "Title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return apperrors.Validation("description", "Description is required")
	}
	if in.PillarID == uuid.Nil {
		return apperrors.Validation("pillar_id", "Pillar is required")
	}
	if len(in.FocusAreaIDs) == 0 {
		return apperrors.Validation("focus_area_ids", "At least one focus area must be selected")
	}
	if in.Status == "" {
		in.Status = models.ProjectStatusPlanning
	}
	if !models.ValidProjectStatus(in.Status) {
		return apperrors.Validation("status", "Unknown project status")
	}
	if in.OrderIndex < 0 {
		return apperrors.Validation("order_index", "Order index must be zero or positive")
	}
	if len(in.GalleryURLs) > maxGallerySize {
		return apperrors.Validation("gallery", "Gallery cannot hold more than 10 images")
	}

	seenGoals := map[int]struct{}{}
	goals := in.SdgGoals[:0]
	for _, g := range in.SdgGoals {
		if g < 1 || g > 17 {
			return apperrors.Validation("sdg_goals", "SDG goals must be between 1 and 17")
		}
		if _, ok := seenGoals[g]; ok {
			continue
		}
		seenGoals[g] = struct{}{}
		goals = append(goals, g)
	}
	in.SdgGoals = goals

	if err := s.Catalog.ValidateSelection(ctx, in.PillarID, in.FocusAreaIDs); err != nil {
		return err
	}

	if in.CountryID != nil {
		var country models.Country
		if err := s.DB.WithContext(ctx).Where("country_id = ?", *in.CountryID).First(&country).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("Country")
			}
			return err
		}
	}

	seenImpacts := map[uuid.UUID]struct{}{}
	for _, c := range in.Contributions {
		if c.ImpactID == uuid.Nil {
			return apperrors.Validation("project_impacts", "impact_id is required for each contribution")
		}
		if c.ContributionValue <= 0 {
			return apperrors.Validation("project_impacts", "contribution_value must be positive")
		}
		if _, ok := seenImpacts[c.ImpactID]; ok {
			return apperrors.Validation("project_impacts", "duplicate impact")
		}
		seenImpacts[c.ImpactID] = struct{}{}
		if _, err := s.Ledger.GetByID(ctx, c.ImpactID); err != nil {
			return err
		}
	}
	return nil
}

func mustJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return datatypes.JSON([]byte("[]"))
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}

// Create validates the whole composition first (fail fast, no partial
// effect), then persists the project row, focus-area rows, contribution rows
// and positive ledger deltas in one transaction.
func (s *Service) Create(ctx context.Context, in ComposeInput) (*models.Project, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:            strings.TrimSpace(in.Title),
		ShortDescription: in.ShortDescription,
		Description:      in.Description,
		Location:         in.Location,
		StartDate:        in.StartDate,
		EndDate:          in.EndDate,
		Status:           in.Status,
		OrderIndex:       in.OrderIndex,
		IsFeatured:       in.IsFeatured,
		IsHidden:         in.IsHidden,
		PillarID:         in.PillarID,
		CategoryID:       in.FocusAreaIDs[0], // legacy single-category view
		CountryID:        in.CountryID,
		SdgGoals:         mustJSON(in.SdgGoals),
		Testimonials:     mustJSON(in.Testimonials),
		Gallery:          mustJSON(in.GalleryURLs),
		FeaturedImageURL: in.FeaturedImageURL,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		for pos, cid := range in.FocusAreaIDs {
			row := &models.ProjectFocusArea{ProjectID: project.ProjectID, CategoryID: cid, Position: pos}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		for _, c := range in.Contributions {
			row := &models.ProjectImpact{
				ProjectID:         project.ProjectID,
				ImpactID:          c.ImpactID,
				ContributionValue: c.ContributionValue,
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
			if err := s.Ledger.ApplyContributionDelta(tx, c.ImpactID, c.ContributionValue); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Update re-validates the full composition and applies the difference
// between the previous and new contribution sets: removed impacts get a
// negative delta equal to their old value, changed ones new−old, added ones
// their full value. This keeps totals correct without a full recalculation.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in ComposeInput) (*models.Project, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}

	var project models.Project
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).First(&project).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("Project")
			}
			return err
		}

		updates := map[string]interface{}{
			"title":              strings.TrimSpace(in.Title),
			"short_description":  in.ShortDescription,
			"description":        in.Description,
			"location":           in.Location,
			"start_date":         in.StartDate,
			"end_date":           in.EndDate,
			"status":             in.Status,
			"order_index":        in.OrderIndex,
			"is_featured":        in.IsFeatured,
			"is_hidden":          in.IsHidden,
			"pillar_id":          in.PillarID,
			"category_id":        in.FocusAreaIDs[0],
			"country_id":         in.CountryID,
			"sdg_goals":          mustJSON(in.SdgGoals),
			"testimonials":       mustJSON(in.Testimonials),
			"gallery":            mustJSON(in.GalleryURLs),
			"featured_image_url": in.FeaturedImageURL,
		}
		if err := tx.Model(&project).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectFocusArea{}).Error; err != nil {
			return err
		}
		for pos, cid := range in.FocusAreaIDs {
			row := &models.ProjectFocusArea{ProjectID: id, CategoryID: cid, Position: pos}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}

		var existing []models.ProjectImpact
		if err := tx.Where("project_id = ?", id).Find(&existing).Error; err != nil {
			return err
		}
		old := make(map[uuid.UUID]int64, len(existing))
		for _, row := range existing {
			old[row.ImpactID] = row.ContributionValue
		}

		for _, c := range in.Contributions {
			prev, had := old[c.ImpactID]
			if !had {
				row := &models.ProjectImpact{ProjectID: id, ImpactID: c.ImpactID, ContributionValue: c.ContributionValue}
				if err := tx.Create(row).Error; err != nil {
					return err
				}
				if err := s.Ledger.ApplyContributionDelta(tx, c.ImpactID, c.ContributionValue); err != nil {
					return err
				}
				continue
			}
			delete(old, c.ImpactID)
			if prev == c.ContributionValue {
				continue
			}
			if err := tx.Model(&models.ProjectImpact{}).
				Where("project_id = ? AND impact_id = ?", id, c.ImpactID).
				Update("contribution_value", c.ContributionValue).Error; err != nil {
				return err
			}
			if err := s.Ledger.ApplyContributionDelta(tx, c.ImpactID, c.ContributionValue-prev); err != nil {
				return err
			}
		}

		// Impacts dropped from the project: retract and remove.
		for impactID, prev := range old {
			if err := tx.Where("project_id = ? AND impact_id = ?", id, impactID).
				Delete(&models.ProjectImpact{}).Error; err != nil {
				return err
			}
			if err := s.Ledger.ApplyContributionDelta(tx, impactID, -prev); err != nil {
				return err
			}
		}

		return tx.Where("project_id = ?", id).First(&project).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete soft-deletes a project: contributions are retracted with negative
// deltas and removed in the same transaction, then media cleanup is
// delegated to the storage collaborator (best effort, outside the
// transaction — recalculation never depends on it).
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	var mediaURLs []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Where("project_id = ?", id).First(&project).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("Project")
			}
			return err
		}

		var rows []models.ProjectImpact
		if err := tx.Where("project_id = ?", id).Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			if err := s.Ledger.ApplyContributionDelta(tx, row.ImpactID, -row.ContributionValue); err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectImpact{}).Error; err != nil {
			return err
		}

		var gallery []string
		if len(project.Gallery) > 0 {
			_ = json.Unmarshal(project.Gallery, &gallery)
		}
		mediaURLs = gallery
		if project.FeaturedImageURL != nil && *project.FeaturedImageURL != "" {
			mediaURLs = append(mediaURLs, *project.FeaturedImageURL)
		}

		return tx.Delete(&project).Error
	})
	if err != nil {
		return err
	}

	if s.Storage != nil {
		for _, url := range mediaURLs {
			if err := s.Storage.Delete(ctx, url); err != nil {
				log.Warn().Str("url", url).Err(err).Msg("Project media cleanup failed")
			}
		}
	}
	return nil
}

// SetFeatured toggles the featured flag.
func (s *Service) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*models.Project, error) {
	return s.setFlag(ctx, id, "is_featured", featured)
}

// SetHidden toggles public visibility. Per HiddenProjectsStillContribute the
// ledger is untouched.
func (s *Service) SetHidden(ctx context.Context, id uuid.UUID, hidden bool) (*models.Project, error) {
	return s.setFlag(ctx, id, "is_hidden", hidden)
}

func (s *Service) setFlag(ctx context.Context, id uuid.UUID, column string, value bool) (*models.Project, error) {
	var project models.Project
	if err := s.DB.WithContext(ctx).Where("project_id = ?", id).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Project")
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&project).Update(column, value).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// StoreMedia uploads files through the storage collaborator and returns
// their public URLs, in input order.
func (s *Service) StoreMedia(ctx context.Context, files []uploads.File) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.Storage == nil {
		return nil, apperrors.Validation("files", "File uploads are not configured")
	}
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.Storage.Store(ctx, f.Name, f.Content, f.ContentType)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
