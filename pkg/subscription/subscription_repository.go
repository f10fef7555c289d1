package subscription

import (
	"context"
	"errors"

	"github.com/foodgram/foodgram-backend/domain"
	"github.com/foodgram/foodgram-backend/entities"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	SubscriptionRepository interface {
		Subscribe(ctx context.Context, userID, authorID string) error
		Unsubscribe(ctx context.Context, userID, authorID string) error
		IsSubscribed(ctx context.Context, userID, authorID string) (bool, error)
		GetSubscribedAuthors(ctx context.Context, userID string, page, limit int) ([]*entities.User, int64, error)
	}

	subscriptionRepository struct {
		db *gorm.DB
	}
)

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Subscribe(ctx context.Context, userID, authorID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return err
	}

	subscription := entities.Subscription{
		ID:       uuid.New(),
		UserID:   userUUID,
		AuthorID: authorUUID,
	}

	if err := r.db.WithContext(ctx).Create(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadySubscribed
		}
		return err
	}
	return nil
}

func (r *subscriptionRepository) Unsubscribe(ctx context.Context, userID, authorID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&entities.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotSubscribed
	}
	return nil
}

func (r *subscriptionRepository) IsSubscribed(ctx context.Context, userID, authorID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *subscriptionRepository) GetSubscribedAuthors(ctx context.Context, userID string, page, limit int) ([]*entities.User, int64, error) {
	var authors []*entities.User
	var count int64
	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID)

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Offset(offset).
		Limit(limit).
		Order("subscriptions.created_at desc").
		Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	return authors, count, nil
}
