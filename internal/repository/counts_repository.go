package repository

import (
	"fmt"

	"github.com/amigo-insight/surveydash/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CountsRepository est une interface qui définit les méthodes d'accès aux données
type CountsRepository interface {
	IncrementCounts(vendorUsername, projectID string, status models.SurveyStatus) error
	GetCounts(vendorUsername, projectID string) (*models.ProjectVendorCounts, error)
	GetAllCounts() ([]models.ProjectVendorCounts, error)
	GetCountsByProject(projectID string) ([]models.ProjectVendorCounts, error)
}

// GormCountsRepository est l'implémentation de CountsRepository utilisant GORM.
type GormCountsRepository struct {
	db *gorm.DB
}

// NewCountsRepository crée et retourne une nouvelle instance de GormCountsRepository.
func NewCountsRepository(db *gorm.DB) *GormCountsRepository {
	return &GormCountsRepository{db: db}
}

// IncrementCounts incrémente le compteur du couple (vendor, projet) pour un statut
// terminal, en créant la ligne au premier passage. Un seul INSERT ... ON CONFLICT
// DO UPDATE : l'upsert reste atomique sous résolutions concurrentes.
func (r *GormCountsRepository) IncrementCounts(vendorUsername, projectID string, status models.SurveyStatus) error {
	row, ok := models.NewProjectVendorCounts(vendorUsername, projectID, status)
	if !ok {
		return fmt.Errorf("no counter mapped for status %s", status)
	}
	column, _ := status.VendorCounterColumn()

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vendor_username"}, {Name: "project_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column: gorm.Expr(column+" + ?", 1),
		}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to increment %s for vendor %s on project %s: %w",
			column, vendorUsername, projectID, err)
	}
	return nil
}

// GetCounts récupère l'agrégat d'un couple (vendor, projet).
func (r *GormCountsRepository) GetCounts(vendorUsername, projectID string) (*models.ProjectVendorCounts, error) {
	var counts models.ProjectVendorCounts
	if err := r.db.Where("vendor_username = ? AND project_id = ?", vendorUsername, projectID).
		First(&counts).Error; err != nil {
		return nil, err
	}
	return &counts, nil
}

// GetAllCounts récupère tous les agrégats (surfaces de reporting, lecture seule).
func (r *GormCountsRepository) GetAllCounts() ([]models.ProjectVendorCounts, error) {
	var counts []models.ProjectVendorCounts
	if err := r.db.Find(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all counts: %w", err)
	}
	return counts, nil
}

// GetCountsByProject récupère les agrégats de tous les vendors d'un projet.
func (r *GormCountsRepository) GetCountsByProject(projectID string) ([]models.ProjectVendorCounts, error) {
	var counts []models.ProjectVendorCounts
	if err := r.db.Where("project_id = ?", projectID).Find(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve counts for project %s: %w", projectID, err)
	}
	return counts, nil
}
