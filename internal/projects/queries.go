package projects

import (
	"context"

	"amani-backend/internal/models"
	"amani-backend/internal/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows the project listing. Hidden defaults to nil (both).
type ListFilter struct {
	PillarID   *uuid.UUID
	CategoryID *uuid.UUID
	Status     string
	IsFeatured *bool
	IsHidden   *bool
}

// ProjectListItem is a project row enriched with joined names for dashboard
// consumption.
type ProjectListItem struct {
	models.Project
	PillarName   string  `json:"pillar_name"`
	CategoryName string  `json:"category_name"`
	CountryName  *string `json:"country_name"`
}

// FocusAreaView is one selected focus area, in selection order.
type FocusAreaView struct {
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Position   int       `json:"position"`
}

// ContributionView is a contribution row enriched with the impact's label
// and unit.
type ContributionView struct {
	ImpactID          uuid.UUID `json:"impact_id"`
	ImpactName        string    `json:"impact_name"`
	Unit              string    `json:"unit"`
	ContributionValue int64     `json:"contribution_value"`
}

// ProjectDetail is a project with all associations resolved. Read-only; the
// ledger is never touched on this path.
type ProjectDetail struct {
	ProjectListItem
	FocusAreas    []FocusAreaView    `json:"focus_areas"`
	Contributions []ContributionView `json:"project_impacts"`
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]ProjectListItem, error) {
	q := s.DB.WithContext(ctx).Model(&models.Project{})
	if f.PillarID != nil {
		q = q.Where("pillar_id = ?", *f.PillarID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.IsFeatured != nil {
		q = q.Where("is_featured = ?", *f.IsFeatured)
	}
	if f.IsHidden != nil {
		q = q.Where("is_hidden = ?", *f.IsHidden)
	}

	var rows []models.Project
	if err := q.Order("order_index ASC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return s.enrichList(ctx, rows)
}

// enrichList batch-resolves pillar/category/country names for the rows.
func (s *Service) enrichList(ctx context.Context, rows []models.Project) ([]ProjectListItem, error) {
	items := make([]ProjectListItem, 0, len(rows))
	if len(rows) == 0 {
		return items, nil
	}

	pillarNames := map[uuid.UUID]string{}
	var pillarRows []models.Pillar
	if err := s.DB.WithContext(ctx).Unscoped().Find(&pillarRows).Error; err != nil {
		return nil, err
	}
	for _, p := range pillarRows {
		pillarNames[p.PillarID] = p.Name
	}

	categoryNames := map[uuid.UUID]string{}
	var categoryRows []models.Category
	if err := s.DB.WithContext(ctx).Unscoped().Find(&categoryRows).Error; err != nil {
		return nil, err
	}
	for _, c := range categoryRows {
		categoryNames[c.CategoryID] = c.Name
	}

	countryNames := map[uuid.UUID]string{}
	var countryRows []models.Country
	if err := s.DB.WithContext(ctx).Unscoped().Find(&countryRows).Error; err != nil {
		return nil, err
	}
	for _, c := range countryRows {
		countryNames[c.CountryID] = c.Name
	}

	for _, row := range rows {
		item := ProjectListItem{
			Project:      row,
			PillarName:   pillarNames[row.PillarID],
			CategoryName: categoryNames[row.CategoryID],
		}
		if row.CountryID != nil {
			if name, ok := countryNames[*row.CountryID]; ok {
				item.CountryName = &name
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// GetWithAssociations joins a project with its pillar name, focus areas,
// country name and enriched contribution rows.
func (s *Service) GetWithAssociations(ctx context.Context, id uuid.UUID) (*ProjectDetail, error) {
	var project models.Project
	if err := s.DB.WithContext(ctx).Where("project_id = ?", id).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Project")
		}
		return nil, err
	}

	items, err := s.enrichList(ctx, []models.Project{project})
	if err != nil {
		return nil, err
	}
	detail := &ProjectDetail{ProjectListItem: items[0]}

	err = s.DB.WithContext(ctx).Model(&models.ProjectFocusArea{}).
		Select(`"ProjectFocusAreas".category_id, c.name, "ProjectFocusAreas".position`).
		Joins(`JOIN "Categories" c ON c.category_id = "ProjectFocusAreas".category_id`).
		Where(`"ProjectFocusAreas".project_id = ?`, id).
		Order(`"ProjectFocusAreas".position ASC`).
		Scan(&detail.FocusAreas).Error
	if err != nil {
		return nil, err
	}

	detail.Contributions, err = s.GetProjectImpacts(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// GetProjectImpacts returns the project's contribution rows enriched with
// impact name and unit.
func (s *Service) GetProjectImpacts(ctx context.Context, id uuid.UUID) ([]ContributionView, error) {
	var project models.Project
	if err := s.DB.WithContext(ctx).Select("project_id").Where("project_id = ?", id).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Project")
		}
		return nil, err
	}

	views := []ContributionView{}
	err := s.DB.WithContext(ctx).Model(&models.ProjectImpact{}).
		Select(`"ProjectImpacts".impact_id, i.name AS impact_name, i.unit, "ProjectImpacts".contribution_value`).
		Joins(`JOIN "Impacts" i ON i.impact_id = "ProjectImpacts".impact_id`).
		Where(`"ProjectImpacts".project_id = ?`, id).
		Order("i.order_index ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}
