package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/krishkalaria12/pic-profile-maker/models"
	"gorm.io/gorm"
)

type PictureRepository struct {
	db *gorm.DB
}

func NewPictureRepository(db *gorm.DB) *PictureRepository {
	return &PictureRepository{db: db}
}

func (r *PictureRepository) Create(ctx context.Context, picture *models.Picture) error {
	if err := r.db.WithContext(ctx).Create(picture).Error; err != nil {
		return fmt.Errorf("failed to create picture: %w", err)
	}
	return nil
}

// ListByUser returns the user's pictures, newest first.
func (r *PictureRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Picture, error) {
	var pictures []models.Picture
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&pictures).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pictures of user %s: %w", userID, err)
	}
	return pictures, nil
}

func (r *PictureRepository) FindByFilename(ctx context.Context, userID uuid.UUID, filename string) (*models.Picture, error) {
	var picture models.Picture
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND filename = ?", userID, filename).
		First(&picture).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPictureNotFound
		}
		return nil, fmt.Errorf("failed to find picture %s: %w", filename, err)
	}
	return &picture, nil
}
