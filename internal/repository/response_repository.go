package repository

import (
	"fmt"
	"time"

	"github.com/amigo-insight/surveydash/internal/models"
	"gorm.io/gorm"
)

// ResponseRepository est une interface qui définit les méthodes d'accès aux données
type ResponseRepository interface {
	CreateResponse(response *models.SurveyResponse) error
	GetResponseByUID(uid string) (*models.SurveyResponse, error)
	ExistsByUID(uid string) (bool, error)
	CountByIPAndProject(ipAddress, projectID string) (int64, error)
	ResolveIfInProgress(uid string, status models.SurveyStatus, endTime time.Time) (bool, error)
	GetAllResponses() ([]models.SurveyResponse, error)
	CountByProject(projectID string) (int64, error)
}

// GormResponseRepository est l'implémentation de ResponseRepository utilisant GORM.
type GormResponseRepository struct {
	db *gorm.DB
}

// NewResponseRepository crée et retourne une nouvelle instance de GormResponseRepository.
func NewResponseRepository(db *gorm.DB) *GormResponseRepository {
	return &GormResponseRepository{db: db}
}

// CreateResponse insère un nouvel enregistrement du ledger. L'index unique sur
// uid fait respecter la déduplication au niveau du stockage : un doublon remonte
// en gorm.ErrDuplicatedKey (TranslateError activé sur la connexion).
func (r *GormResponseRepository) CreateResponse(response *models.SurveyResponse) error {
	if err := r.db.Create(response).Error; err != nil {
		return fmt.Errorf("failed to create survey response: %w", err)
	}
	return nil
}

// GetResponseByUID récupère un enregistrement via son UID participant.
func (r *GormResponseRepository) GetResponseByUID(uid string) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	if err := r.db.Where("uid = ?", uid).First(&response).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

// ExistsByUID vérifie si un UID a déjà tenté ce sondage.
func (r *GormResponseRepository) ExistsByUID(uid string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.SurveyResponse{}).Where("uid = ?", uid).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check uid %s: %w", uid, err)
	}
	return count > 0, nil
}

// CountByIPAndProject compte les tentatives existantes pour un couple (IP, projet).
func (r *GormResponseRepository) CountByIPAndProject(ipAddress, projectID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.SurveyResponse{}).
		Where("ip_address = ? AND project_id = ?", ipAddress, projectID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count responses for ip %s on project %s: %w", ipAddress, projectID, err)
	}
	return count, nil
}

// ResolveIfInProgress applique la transition IN_PROGRESS -> statut terminal par un
// UPDATE conditionnel unique (compare-and-set sur le statut). Retourne false quand
// aucune ligne n'a changé : l'enregistrement est déjà résolu ou inconnu, et deux
// callbacks concurrents pour le même UID ne peuvent pas réussir tous les deux.
func (r *GormResponseRepository) ResolveIfInProgress(uid string, status models.SurveyStatus, endTime time.Time) (bool, error) {
	res := r.db.Model(&models.SurveyResponse{}).
		Where("uid = ? AND status = ?", uid, models.StatusInProgress).
		Updates(map[string]interface{}{
			"status":   status,
			"end_time": endTime,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to resolve response %s: %w", uid, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetAllResponses récupère tous les enregistrements du ledger, plus récents d'abord.
func (r *GormResponseRepository) GetAllResponses() ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	if err := r.db.Order("start_time DESC").Find(&responses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all responses: %w", err)
	}
	return responses, nil
}

// CountByProject compte le nombre total d'enregistrements pour un projet donné.
func (r *GormResponseRepository) CountByProject(projectID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.SurveyResponse{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count responses for project %s: %w", projectID, err)
	}
	return count, nil
}
