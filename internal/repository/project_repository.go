package repository

import (
	"fmt"

	"github.com/amigo-insight/surveydash/internal/models"
	"gorm.io/gorm"
)

// ProjectRepository est une interface qui définit les méthodes d'accès aux données
type ProjectRepository interface {
	CreateProject(project *models.Project) error
	GetProjectByToken(token string) (*models.Project, error)
	GetProjectByIdentifier(identifier string) (*models.Project, error)
	GetAllProjects() ([]models.Project, error)
	GetProjectsByClientID(clientID uint) ([]models.Project, error)
	UpdateProjectStatus(identifier string, status models.ProjectStatus) error
	UpdateProjectVendors(identifier string, vendors []string) error
	IncrementProjectCounter(identifier string, column string) error
}

// GormProjectRepository est l'implémentation de ProjectRepository utilisant GORM.
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository crée et retourne une nouvelle instance de GormProjectRepository.
func NewProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateProject insère un nouveau projet dans la base de données.
func (r *GormProjectRepository) CreateProject(project *models.Project) error {
	if err := r.db.Create(project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetProjectByToken récupère un projet via son token opaque, avec ses liens pays.
func (r *GormProjectRepository) GetProjectByToken(token string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Preload("CountryLinks", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("token = ?", token).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProjectByIdentifier récupère un projet via son identifiant externe.
func (r *GormProjectRepository) GetProjectByIdentifier(identifier string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Preload("CountryLinks", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("project_identifier = ?", identifier).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// GetAllProjects récupère tous les projets de la base de données.
func (r *GormProjectRepository) GetAllProjects() ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Preload("CountryLinks").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all projects: %w", err)
	}
	return projects, nil
}

// GetProjectsByClientID récupère les projets appartenant à un client donné.
func (r *GormProjectRepository) GetProjectsByClientID(clientID uint) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Where("client_id = ?", clientID).Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve projects for client %d: %w", clientID, err)
	}
	return projects, nil
}

// UpdateProjectStatus met à jour le statut d'un projet (toggle admin).
func (r *GormProjectRepository) UpdateProjectStatus(identifier string, status models.ProjectStatus) error {
	res := r.db.Model(&models.Project{}).
		Where("project_identifier = ?", identifier).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for project %s: %w", identifier, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateProjectVendors remplace la liste des vendors assignés à un projet.
func (r *GormProjectRepository) UpdateProjectVendors(identifier string, vendors []string) error {
	res := r.db.Model(&models.Project{}).
		Where("project_identifier = ?", identifier).
		Select("vendors").
		Updates(models.Project{Vendors: vendors})
	if res.Error != nil {
		return fmt.Errorf("failed to update vendors for project %s: %w", identifier, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementProjectCounter incrémente atomiquement un compteur d'issue du projet.
// La colonne vient de la table de correspondance des statuts, jamais d'une entrée
// utilisateur. Un seul UPDATE conditionnel, pas de read-modify-write.
func (r *GormProjectRepository) IncrementProjectCounter(identifier string, column string) error {
	res := r.db.Model(&models.Project{}).
		Where("project_identifier = ?", identifier).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment %s for project %s: %w", column, identifier, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
