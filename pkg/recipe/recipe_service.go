package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/foodgram/foodgram-backend/domain"
	"github.com/foodgram/foodgram-backend/entities"
	"github.com/foodgram/foodgram-backend/internal/utils/storage"
	"github.com/foodgram/foodgram-backend/pkg/catalog"
	"github.com/foodgram/foodgram-backend/pkg/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, requesterID string) ([]domain.RecipeResponse, int64, error)
		GetRecipeDetail(ctx context.Context, recipeID string, requesterID string) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error
		UploadRecipeImage(ctx context.Context, req domain.UploadRecipeImageRequest, userID string) (string, error)

		AddFavorite(ctx context.Context, recipeID string, userID string) (domain.RecipeSummary, error)
		RemoveFavorite(ctx context.Context, recipeID string, userID string) error
		AddToCart(ctx context.Context, recipeID string, userID string) (domain.RecipeSummary, error)
		RemoveFromCart(ctx context.Context, recipeID string, userID string) error
		DownloadShoppingCart(ctx context.Context, userID string) (string, error)
	}

	recipeService struct {
		recipeRepository  RecipeRepository
		catalogRepository catalog.CatalogRepository
		userRepository    user.UserRepository
		s3                storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	catalogRepository catalog.CatalogRepository,
	userRepository user.UserRepository,
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:  recipeRepository,
		catalogRepository: catalogRepository,
		userRepository:    userRepository,
		s3:                s3,
	}
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, requesterID string) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, requesterID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		res, err := s.toRecipeResponse(ctx, recipe, requesterID)
		if err != nil {
			return nil, 0, err
		}
		response = append(response, res)
	}

	return response, count, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, requesterID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	return s.toRecipeResponse(ctx, recipe, requesterID)
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	authorUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	if req.CookingTime < 1 {
		return domain.RecipeResponse{}, domain.ErrInvalidCookingTime
	}

	tags, ingredients, err := s.resolveReferences(ctx, req.Tags, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorUUID,
		Name:        req.Name,
		Text:        req.Text,
		ImageURL:    req.Image,
		CookingTime: req.CookingTime,
	}

	amounts := buildAmounts(recipe.ID, req.Ingredients, ingredients)

	if err := s.recipeRepository.CreateRecipe(ctx, recipe, tags, amounts); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipe.ID.String(), userID)
}

// UpdateRecipe swaps the whole ingredient and tag sets for the new
// ones. Partial sets are not merged; what the request carries is what
// the recipe has afterwards.
func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if recipe.AuthorID.String() != userID {
		return domain.RecipeResponse{}, domain.ErrUnauthorizedRecipeAccess
	}

	var tags []*entities.Tag
	var amounts []*entities.IngredientAmount

	if req.Tags != nil {
		tags, err = s.resolveTags(ctx, req.Tags)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	if req.Ingredients != nil {
		ingredients, err := s.resolveIngredients(ctx, req.Ingredients)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		amounts = buildAmounts(recipe.ID, req.Ingredients, ingredients)
	}

	if req.Name != "" {
		recipe.Name = req.Name
	}
	if req.Text != "" {
		recipe.Text = req.Text
	}
	if req.CookingTime > 0 {
		recipe.CookingTime = req.CookingTime
	}
	if req.Image != "" {
		recipe.ImageURL = req.Image
	}

	// Preloaded associations must not be re-saved alongside the row.
	recipe.Author = nil
	recipe.Tags = nil
	recipe.Ingredients = nil

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, tags, amounts); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if recipe.AuthorID.String() != userID {
		return domain.ErrUnauthorizedRecipeAccess
	}

	if recipe.ImageURL != "" {
		objectKey := s.s3.GetObjectKeyFromLink(recipe.ImageURL)
		if objectKey != "" {
			_ = s.s3.DeleteFile(objectKey)
		}
	}

	return s.recipeRepository.DeleteRecipe(ctx, recipeID)
}

func (s *recipeService) UploadRecipeImage(ctx context.Context, req domain.UploadRecipeImageRequest, userID string) (string, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, req.RecipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrRecipeNotFound
		}
		return "", err
	}

	if recipe.AuthorID.String() != userID {
		return "", domain.ErrUnauthorizedRecipeAccess
	}

	if recipe.ImageURL != "" {
		objectKey := s.s3.GetObjectKeyFromLink(recipe.ImageURL)
		if objectKey != "" {
			_ = s.s3.DeleteFile(objectKey)
		}
	}

	imageURL, err := s.s3.UploadFile(ctx, req.Image, "recipes")
	if err != nil {
		return "", err
	}

	recipe.ImageURL = imageURL
	recipe.Author = nil
	recipe.Tags = nil
	recipe.Ingredients = nil
	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, nil, nil); err != nil {
		return "", err
	}

	return imageURL, nil
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID string, userID string) (domain.RecipeSummary, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeSummary{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeSummary{}, err
	}

	favorited, err := s.recipeRepository.IsFavorited(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}
	if favorited {
		return domain.RecipeSummary{}, domain.ErrAlreadyFavorited
	}

	if err := s.recipeRepository.AddFavorite(ctx, userID, recipeID); err != nil {
		return domain.RecipeSummary{}, err
	}

	return toRecipeSummary(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID string, userID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	return s.recipeRepository.RemoveFavorite(ctx, userID, recipeID)
}

func (s *recipeService) AddToCart(ctx context.Context, recipeID string, userID string) (domain.RecipeSummary, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeSummary{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeSummary{}, err
	}

	inCart, err := s.recipeRepository.IsInCart(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeSummary{}, err
	}
	if inCart {
		return domain.RecipeSummary{}, domain.ErrAlreadyInCart
	}

	if err := s.recipeRepository.AddToCart(ctx, userID, recipeID); err != nil {
		return domain.RecipeSummary{}, err
	}

	return toRecipeSummary(recipe), nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, recipeID string, userID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	return s.recipeRepository.RemoveFromCart(ctx, userID, recipeID)
}

// DownloadShoppingCart renders the aggregated shopping list as plain
// text. An empty cart is rejected rather than producing an empty file.
func (s *recipeService) DownloadShoppingCart(ctx context.Context, userID string) (string, error) {
	count, err := s.recipeRepository.CountCart(ctx, userID)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "", domain.ErrEmptyCart
	}

	items, err := s.recipeRepository.GetShoppingList(ctx, userID)
	if err != nil {
		return "", err
	}

	return RenderShoppingList(items), nil
}

// RenderShoppingList formats one line per aggregated ingredient:
// "<name> - <amount> <unit>."
func RenderShoppingList(items []domain.ShoppingListItem) string {
	var b strings.Builder
	b.WriteString("Shopping list:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s - %d %s.\n", item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}

func (s *recipeService) resolveReferences(ctx context.Context, tagIDs []string, ingredientReqs []domain.RecipeIngredientRequest) ([]*entities.Tag, map[string]*entities.Ingredient, error) {
	tags, err := s.resolveTags(ctx, tagIDs)
	if err != nil {
		return nil, nil, err
	}

	ingredients, err := s.resolveIngredients(ctx, ingredientReqs)
	if err != nil {
		return nil, nil, err
	}

	return tags, ingredients, nil
}

func (s *recipeService) resolveTags(ctx context.Context, tagIDs []string) ([]*entities.Tag, error) {
	tags, err := s.catalogRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, domain.ErrTagNotFound
	}
	return tags, nil
}

// resolveIngredients validates the submitted ingredient list: it must
// be non-empty, reference each catalog ingredient at most once, carry
// positive amounts, and every reference must resolve.
func (s *recipeService) resolveIngredients(ctx context.Context, reqs []domain.RecipeIngredientRequest) (map[string]*entities.Ingredient, error) {
	if len(reqs) == 0 {
		return nil, domain.ErrEmptyIngredients
	}

	ids := make([]string, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		if req.Amount < 1 {
			return nil, domain.ErrInvalidAmount
		}
		if _, ok := seen[req.ID]; ok {
			return nil, domain.ErrDuplicateIngredients
		}
		seen[req.ID] = struct{}{}
		ids = append(ids, req.ID)
	}

	ingredients, err := s.catalogRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(ingredients) != len(ids) {
		return nil, domain.ErrIngredientNotFound
	}

	byID := make(map[string]*entities.Ingredient, len(ingredients))
	for _, ingredient := range ingredients {
		byID[ingredient.ID.String()] = ingredient
	}
	return byID, nil
}

func buildAmounts(recipeID uuid.UUID, reqs []domain.RecipeIngredientRequest, ingredients map[string]*entities.Ingredient) []*entities.IngredientAmount {
	amounts := make([]*entities.IngredientAmount, 0, len(reqs))
	for _, req := range reqs {
		amounts = append(amounts, &entities.IngredientAmount{
			ID:           uuid.New(),
			RecipeID:     recipeID,
			IngredientID: ingredients[req.ID].ID,
			Amount:       req.Amount,
		})
	}
	return amounts
}

func (s *recipeService) toRecipeResponse(ctx context.Context, recipe *entities.Recipe, requesterID string) (domain.RecipeResponse, error) {
	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, domain.TagResponse{
			ID:    tag.ID.String(),
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		})
	}

	ingredients := make([]domain.RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, amount := range recipe.Ingredients {
		res := domain.RecipeIngredientResponse{
			ID:     amount.IngredientID.String(),
			Amount: amount.Amount,
		}
		if amount.Ingredient != nil {
			res.Name = amount.Ingredient.Name
			res.MeasurementUnit = amount.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, res)
	}

	author := domain.UserResponse{ID: recipe.AuthorID.String()}
	if recipe.Author != nil {
		author.Email = recipe.Author.Email
		author.Username = recipe.Author.Username
		author.FirstName = recipe.Author.FirstName
		author.LastName = recipe.Author.LastName
		author.AvatarURL = recipe.Author.AvatarURL
	}

	isFavorited := false
	isInCart := false
	if requesterID != "" {
		var err error
		isFavorited, err = s.recipeRepository.IsFavorited(ctx, requesterID, recipe.ID.String())
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		isInCart, err = s.recipeRepository.IsInCart(ctx, requesterID, recipe.ID.String())
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		if requesterID != recipe.AuthorID.String() {
			author.IsSubscribed, err = s.userRepository.IsSubscribed(ctx, requesterID, recipe.AuthorID.String())
			if err != nil {
				return domain.RecipeResponse{}, err
			}
		}
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		CreatedAt:        recipe.CreatedAt,
	}, nil
}

func toRecipeSummary(recipe *entities.Recipe) domain.RecipeSummary {
	return domain.RecipeSummary{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
