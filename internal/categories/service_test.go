package categories

import (
	"context"
	"testing"

	"amani-backend/internal/models"
	"amani-backend/internal/pkg/apperrors"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCategoryDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.PillarCategory{},
		&models.Project{},
		&models.ProjectFocusArea{},
	))
	return db
}

func TestCreateCategory_CaseInsensitiveUnique(t *testing.T) {
	s := &Service{DB: setupCategoryDB(t)}
	ctx := context.Background()

	_, err := s.Create(ctx, "Climate")
	require.NoError(t, err)

	_, err = s.Create(ctx, "climate")
	var ce *apperrors.ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestUpdateCategory_KeepsOwnNameOnCaseChange(t *testing.T) {
	s := &Service{DB: setupCategoryDB(t)}
	ctx := context.Background()

	c, err := s.Create(ctx, "climate")
	require.NoError(t, err)

	updated, err := s.Update(ctx, c.CategoryID, "Climate")
	require.NoError(t, err)
	assert.Equal(t, "Climate", updated.Name)
}

func TestDeleteCategory_BlockedByLegacyReference(t *testing.T) {
	db := setupCategoryDB(t)
	s := &Service{DB: db}
	ctx := context.Background()

	c, err := s.Create(ctx, "Water")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Project{
		Title: "P", Description: "x", Status: models.ProjectStatusPlanning,
		PillarID: uuid.New(), CategoryID: c.CategoryID,
	}).Error)

	err = s.Delete(ctx, c.CategoryID)
	var ce *apperrors.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Focus area has active projects", ce.Message)
}

func TestDeleteCategory_BlockedByFocusAreaSelection(t *testing.T) {
	db := setupCategoryDB(t)
	s := &Service{DB: db}
	ctx := context.Background()

	c, err := s.Create(ctx, "Water")
	require.NoError(t, err)
	p := &models.Project{
		Title: "P", Description: "x", Status: models.ProjectStatusPlanning,
		PillarID: uuid.New(), CategoryID: uuid.New(),
	}
	require.NoError(t, db.Create(p).Error)
	require.NoError(t, db.Create(&models.ProjectFocusArea{
		ProjectID: p.ProjectID, CategoryID: c.CategoryID, Position: 1,
	}).Error)

	err = s.Delete(ctx, c.CategoryID)
	var ce *apperrors.ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestDeleteCategory_RemovesPillarAssignments(t *testing.T) {
	db := setupCategoryDB(t)
	s := &Service{DB: db}
	ctx := context.Background()

	c, err := s.Create(ctx, "Water")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.PillarCategory{PillarID: uuid.New(), CategoryID: c.CategoryID}).Error)

	require.NoError(t, s.Delete(ctx, c.CategoryID))

	var rows int64
	require.NoError(t, db.Model(&models.PillarCategory{}).Where("category_id = ?", c.CategoryID).Count(&rows).Error)
	assert.Zero(t, rows)
}
