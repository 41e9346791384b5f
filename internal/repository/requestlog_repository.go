package repository

import (
	"fmt"

	"github.com/amigo-insight/surveydash/internal/models"
	"gorm.io/gorm"
)

// RequestLogRepository est une interface qui définit les méthodes d'accès aux données
type RequestLogRepository interface {
	CreateRequestLog(log *models.RequestLog) error
	GetRecentRequestLogs(limit int) ([]models.RequestLog, error)
}

// GormRequestLogRepository est l'implémentation de RequestLogRepository utilisant GORM.
type GormRequestLogRepository struct {
	db *gorm.DB
}

// NewRequestLogRepository crée et retourne une nouvelle instance de GormRequestLogRepository.
func NewRequestLogRepository(db *gorm.DB) *GormRequestLogRepository {
	return &GormRequestLogRepository{db: db}
}

// CreateRequestLog insère une ligne de journal de requête.
func (r *GormRequestLogRepository) CreateRequestLog(log *models.RequestLog) error {
	if err := r.db.Create(log).Error; err != nil {
		return fmt.Errorf("failed to create request log: %w", err)
	}
	return nil
}

// GetRecentRequestLogs récupère les dernières requêtes journalisées.
func (r *GormRequestLogRepository) GetRecentRequestLogs(limit int) ([]models.RequestLog, error) {
	var logs []models.RequestLog
	if err := r.db.Order("timestamp DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve request logs: %w", err)
	}
	return logs, nil
}
