package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

const msgSelfSubscription = "you cannot subscribe to yourself"

// SubscriptionService manages who follows which author.
type SubscriptionService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewSubscriptionService(db *gorm.DB, log *zap.SugaredLogger) *SubscriptionService {
	return &SubscriptionService{db: db, log: log}
}

// Subscribe makes subscriber follow author and returns the author as the
// subscriptions listing shows it.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	if _, err := loadActor(ctx, s.db, subscriberID); err != nil {
		return nil, err
	}
	author, err := s.author(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if subscriberID == authorID {
		return nil, &ConflictError{Message: msgSelfSubscription}
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Count(&count).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to check subscription")
	}
	if count > 0 {
		return nil, &ConflictError{Message: "you are already subscribed to this author"}
	}

	sub := &models.Subscription{SubscriberID: subscriberID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, writeError(err, "you are already subscribed to this author", "failed to subscribe")
	}
	s.log.Debugw("subscribed", "subscriber_id", subscriberID, "author_id", authorID)

	views, err := s.views(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	views[0].IsSubscribed = true
	return &views[0], nil
}

// Unsubscribe removes the subscription. Removing a missing one is not found.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID uuid.UUID) error {
	if _, err := loadActor(ctx, s.db, subscriberID); err != nil {
		return err
	}
	if _, err := s.author(ctx, authorID); err != nil {
		return err
	}
	if subscriberID == authorID {
		return &ConflictError{Message: msgSelfSubscription}
	}

	res := s.db.WithContext(ctx).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to unsubscribe")
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Resource: "subscription", ID: authorID.String(), Message: "you are not subscribed to this author"}
	}
	return nil
}

// List returns a page of the authors subscriber follows, ordered by
// username, each with up to recipesLimit of their newest recipes. A
// non-positive recipesLimit includes all recipes.
func (s *SubscriptionService) List(ctx context.Context, subscriberID uuid.UUID, limit, offset, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	followed := func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)", s.db.Model(&models.Subscription{}).Select("author_id").Where("subscriber_id = ?", subscriberID))
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Scopes(followed).Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count subscriptions")
	}

	var authors []models.User
	q := s.db.WithContext(ctx).Scopes(followed).Order("username")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&authors).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list subscriptions")
	}

	views, err := s.views(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	for i := range views {
		views[i].IsSubscribed = true
	}
	return views, count, nil
}

func (s *SubscriptionService) author(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "user", id)
	}
	return &author, nil
}

func (s *SubscriptionService) views(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	out := make([]types.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		a := &authors[i]
		db := s.db.WithContext(ctx)

		var total int64
		if err := db.Model(&models.Recipe{}).Where("author_id = ?", a.ID).Count(&total).Error; err != nil {
			return nil, errors.Wrap(err, "failed to count author recipes")
		}

		var recipes []models.Recipe
		q := db.Where("author_id = ?", a.ID).Order("created_at DESC").Order("id")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		if err := q.Find(&recipes).Error; err != nil {
			return nil, errors.Wrap(err, "failed to load author recipes")
		}

		cropped := make([]types.CroppedRecipeResponse, 0, len(recipes))
		for j := range recipes {
			cropped = append(cropped, croppedView(&recipes[j]))
		}
		out = append(out, types.SubscriptionResponse{
			UserResponse: userView(a, false),
			Recipes:      cropped,
			RecipesCount: total,
		})
	}
	return out, nil
}
