package services

import (
	"gorm.io/gorm"

	"github.com/petpal-dev/petpal/models"
)

// InteractionService reads the interaction log and runs batch interactions.
// Writing log entries belongs to PetService, which persists them in the
// same transaction as the pet mutation.
type InteractionService struct {
	db   *gorm.DB
	pets *PetService
}

// NewInteractionService returns an InteractionService backed by db.
func NewInteractionService(db *gorm.DB, pets *PetService) *InteractionService {
	return &InteractionService{db: db, pets: pets}
}

// History returns the user's interactions, newest first, optionally scoped
// to one pet or one action type.
func (s *InteractionService) History(userID, petID, actionType string, page, pageSize int) ([]models.Interaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	q := s.db.Model(&models.Interaction{}).Where("user_id = ?", userID)
	if petID != "" {
		q = q.Where("pet_id = ?", petID)
	}
	if actionType != "" {
		q = q.Where("type = ?", actionType)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var entries []models.Interaction
	if err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// BatchItem is one pet's outcome within a batch interaction.
type BatchItem struct {
	PetID   string          `json:"pet_id"`
	Success bool            `json:"success"`
	Result  *InteractResult `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Batch applies the same action to several pets sequentially. One pet's
// failure never aborts the rest; each outcome is reported per pet.
func (s *InteractionService) Batch(userID string, petIDs []string, in InteractInput) []BatchItem {
	results := make([]BatchItem, 0, len(petIDs))
	for _, petID := range petIDs {
		res, err := s.pets.Interact(userID, petID, in)
		if err != nil {
			results = append(results, BatchItem{PetID: petID, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BatchItem{PetID: petID, Success: true, Result: res})
	}
	return results
}
