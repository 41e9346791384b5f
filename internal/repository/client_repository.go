package repository

import (
	"fmt"

	"github.com/amigo-insight/surveydash/internal/models"
	"gorm.io/gorm"
)

// ClientRepository est une interface qui définit les méthodes d'accès aux données
type ClientRepository interface {
	CreateClient(client *models.Client) error
	GetClientByID(id uint) (*models.Client, error)
	GetAllClients() ([]models.Client, error)
}

// GormClientRepository est l'implémentation de ClientRepository utilisant GORM.
type GormClientRepository struct {
	db *gorm.DB
}

// NewClientRepository crée et retourne une nouvelle instance de GormClientRepository.
func NewClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// CreateClient insère un nouveau client dans la base de données.
func (r *GormClientRepository) CreateClient(client *models.Client) error {
	if err := r.db.Create(client).Error; err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetClientByID récupère un client via son identifiant.
func (r *GormClientRepository) GetClientByID(id uint) (*models.Client, error) {
	var client models.Client
	if err := r.db.First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// GetAllClients récupère tous les clients de la base de données.
func (r *GormClientRepository) GetAllClients() ([]models.Client, error) {
	var clients []models.Client
	if err := r.db.Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all clients: %w", err)
	}
	return clients, nil
}
