package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessGetRecipes        = "success get recipes"
	MessageSuccessGetRecipeDetail   = "success get recipe detail"
	MessageSuccessCreateRecipe      = "recipe created successfully"
	MessageSuccessUpdateRecipe      = "recipe updated successfully"
	MessageSuccessDeleteRecipe      = "recipe deleted successfully"
	MessageSuccessAddFavorite       = "recipe added to favorites"
	MessageSuccessRemoveFavorite    = "recipe removed from favorites"
	MessageSuccessAddToCart         = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart    = "recipe removed from shopping cart"
	MessageSuccessUploadRecipeImage = "recipe image uploaded successfully"

	MessageFailedGetRecipes        = "failed to get recipes"
	MessageFailedGetRecipeDetail   = "failed to get recipe detail"
	MessageFailedCreateRecipe      = "failed to create recipe"
	MessageFailedUpdateRecipe      = "failed to update recipe"
	MessageFailedDeleteRecipe      = "failed to delete recipe"
	MessageFailedAddFavorite       = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite    = "failed to remove recipe from favorites"
	MessageFailedAddToCart         = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart    = "failed to remove recipe from shopping cart"
	MessageFailedDownloadCart      = "failed to download shopping list"
	MessageFailedUploadRecipeImage = "failed to upload recipe image"

	ErrRecipeNotFound           = errors.New("recipe not found")
	ErrUnauthorizedRecipeAccess = errors.New("only the author can modify this recipe")
	ErrInvalidCookingTime       = errors.New("cooking time must be at least 1 minute")
	ErrEmptyIngredients         = errors.New("recipe must contain at least one ingredient")
	ErrDuplicateIngredients     = errors.New("recipe ingredients must be distinct")
	ErrInvalidAmount            = errors.New("ingredient amount must be at least 1")
	ErrAlreadyFavorited         = errors.New("recipe already in favorites")
	ErrNotFavorited             = errors.New("recipe not in favorites")
	ErrAlreadyInCart            = errors.New("recipe already in shopping cart")
	ErrNotInCart                = errors.New("recipe not in shopping cart")
	ErrEmptyCart                = errors.New("shopping cart is empty")
)

type (
	RecipeIngredientRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required,min=1"`
	}

	CreateRecipeRequest struct {
		Name        string                    `json:"name" validate:"required,max=200"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"required,min=1"`
		Image       string                    `json:"image" validate:"omitempty"`
		Tags        []string                  `json:"tags" validate:"required,min=1,dive,uuid"`
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
	}

	UpdateRecipeRequest struct {
		Name        string                    `json:"name" validate:"omitempty,max=200"`
		Text        string                    `json:"text" validate:"omitempty"`
		CookingTime int                       `json:"cooking_time" validate:"omitempty,min=1"`
		Image       string                    `json:"image" validate:"omitempty"`
		Tags        []string                  `json:"tags" validate:"omitempty,min=1,dive,uuid"`
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"omitempty,min=1,dive"`
	}

	RecipeIngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID                string                     `json:"id"`
		Tags              []TagResponse              `json:"tags"`
		Author            UserResponse               `json:"author"`
		Ingredients       []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited       bool                       `json:"is_favorited"`
		IsInShoppingCart  bool                       `json:"is_in_shopping_cart"`
		Name              string                     `json:"name"`
		Image             string                     `json:"image,omitempty"`
		Text              string                     `json:"text"`
		CookingTime       int                        `json:"cooking_time"`
		CreatedAt         time.Time                  `json:"created_at"`
	}

	// RecipeSummary is the short shape returned by favorite/cart toggles
	// and inside subscription listings.
	RecipeSummary struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image,omitempty"`
		CookingTime int    `json:"cooking_time"`
	}

	RecipeFilter struct {
		TagSlugs         []string
		AuthorID         string
		IsFavorited      bool
		IsInShoppingCart bool
	}

	ShoppingListItem struct {
		Name            string `json:"name"`
		Amount          int    `json:"amount"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	UploadRecipeImageRequest struct {
		RecipeID string                `json:"recipe_id" form:"recipe_id" validate:"required,uuid"`
		Image    *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}
)
