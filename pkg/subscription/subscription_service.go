package subscription

import (
	"context"
	"errors"

	"github.com/foodgram/foodgram-backend/domain"
	"github.com/foodgram/foodgram-backend/entities"
	"github.com/foodgram/foodgram-backend/pkg/recipe"
	"github.com/foodgram/foodgram-backend/pkg/user"
	"gorm.io/gorm"
)

type (
	SubscriptionService interface {
		Subscribe(ctx context.Context, authorID string, userID string, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, authorID string, userID string) error
		GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error)
	}

	subscriptionService struct {
		subscriptionRepository SubscriptionRepository
		userRepository         user.UserRepository
		recipeRepository       recipe.RecipeRepository
	}
)

func NewSubscriptionService(
	subscriptionRepository SubscriptionRepository,
	userRepository user.UserRepository,
	recipeRepository recipe.RecipeRepository,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepository: subscriptionRepository,
		userRepository:         userRepository,
		recipeRepository:       recipeRepository,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, authorID string, userID string, recipesLimit int) (domain.SubscriptionResponse, error) {
	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SubscriptionResponse{}, domain.ErrUserNotFound
		}
		return domain.SubscriptionResponse{}, err
	}

	// Compare against the resolved author, not the raw path parameter.
	if author.ID.String() == userID {
		return domain.SubscriptionResponse{}, domain.ErrSelfSubscription
	}

	subscribed, err := s.subscriptionRepository.IsSubscribed(ctx, userID, authorID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if subscribed {
		return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
	}

	if err := s.subscriptionRepository.Subscribe(ctx, userID, authorID); err != nil {
		return domain.SubscriptionResponse{}, err
	}

	return s.toSubscriptionResponse(ctx, author, recipesLimit)
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, authorID string, userID string) error {
	if _, err := s.userRepository.GetUserByID(ctx, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	return s.subscriptionRepository.Unsubscribe(ctx, userID, authorID)
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error) {
	authors, count, err := s.subscriptionRepository.GetSubscribedAuthors(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		res, err := s.toSubscriptionResponse(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		response = append(response, res)
	}

	return response, count, nil
}

func (s *subscriptionService) toSubscriptionResponse(ctx context.Context, author *entities.User, recipesLimit int) (domain.SubscriptionResponse, error) {
	recipes, err := s.recipeRepository.GetRecipesByAuthor(ctx, author.ID.String(), recipesLimit)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	recipesCount, err := s.recipeRepository.CountRecipesByAuthor(ctx, author.ID.String())
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	summaries := make([]domain.RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		summaries = append(summaries, domain.RecipeSummary{
			ID:          r.ID.String(),
			Name:        r.Name,
			Image:       r.ImageURL,
			CookingTime: r.CookingTime,
		})
	}

	return domain.SubscriptionResponse{
		ID:           author.ID.String(),
		Email:        author.Email,
		Username:     author.Username,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		IsSubscribed: true,
		Recipes:      summaries,
		RecipesCount: recipesCount,
	}, nil
}
