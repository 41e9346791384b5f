package repository

import (
	"fmt"

	"github.com/amigo-insight/surveydash/internal/models"
	"gorm.io/gorm"
)

// VendorRepository est une interface qui définit les méthodes d'accès aux données
type VendorRepository interface {
	CreateVendor(vendor *models.Vendor) error
	GetVendorByToken(token string) (*models.Vendor, error)
	GetVendorByUsername(username string) (*models.Vendor, error)
	GetAllVendors() ([]models.Vendor, error)
	UpdateVendorProjects(username string, projects []string) error
	SetVendorShown(username string, shown bool) error
}

// GormVendorRepository est l'implémentation de VendorRepository utilisant GORM.
type GormVendorRepository struct {
	db *gorm.DB
}

// NewVendorRepository crée et retourne une nouvelle instance de GormVendorRepository.
func NewVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// CreateVendor insère un nouveau vendor ; le token de clic est généré au premier insert.
func (r *GormVendorRepository) CreateVendor(vendor *models.Vendor) error {
	if err := r.db.Create(vendor).Error; err != nil {
		return fmt.Errorf("failed to create vendor: %w", err)
	}
	return nil
}

// GetVendorByToken récupère un vendor via son token de clic secret.
func (r *GormVendorRepository) GetVendorByToken(token string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.Where("token = ?", token).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// GetVendorByUsername récupère un vendor via son username unique.
func (r *GormVendorRepository) GetVendorByUsername(username string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.Where("username = ?", username).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// GetAllVendors récupère les vendors visibles (non masqués).
func (r *GormVendorRepository) GetAllVendors() ([]models.Vendor, error) {
	var vendors []models.Vendor
	if err := r.db.Where("shown = ?", true).Find(&vendors).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all vendors: %w", err)
	}
	return vendors, nil
}

// UpdateVendorProjects remplace la liste des projets assignés à un vendor.
func (r *GormVendorRepository) UpdateVendorProjects(username string, projects []string) error {
	res := r.db.Model(&models.Vendor{}).
		Where("username = ?", username).
		Select("projects").
		Updates(models.Vendor{Projects: projects})
	if res.Error != nil {
		return fmt.Errorf("failed to update projects for vendor %s: %w", username, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetVendorShown masque ou réaffiche un vendor sans supprimer ses données.
func (r *GormVendorRepository) SetVendorShown(username string, shown bool) error {
	res := r.db.Model(&models.Vendor{}).
		Where("username = ?", username).
		Update("shown", shown)
	if res.Error != nil {
		return fmt.Errorf("failed to update visibility for vendor %s: %w", username, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
