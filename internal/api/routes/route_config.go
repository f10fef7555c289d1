package routes

import (
	"github.com/foodgram/foodgram-backend/internal/api/handlers"
	"github.com/foodgram/foodgram-backend/internal/middleware"
	"github.com/foodgram/foodgram-backend/pkg/jwt"
	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App                 *fiber.App
	UserHandler         handlers.UserHandler
	CatalogHandler      handlers.CatalogHandler
	RecipeHandler       handlers.RecipeHandler
	SubscriptionHandler handlers.SubscriptionHandler
	Middleware          middleware.Middleware
	JWTService          jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Catalog()
	c.Recipes()
	c.GuestRoute()
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	auth := c.Middleware.AuthMiddleware(c.JWTService)
	optional := c.Middleware.OptionalAuthMiddleware(c.JWTService)
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Post("/send_verify", c.UserHandler.SendVerificationEmail)
		user.Get("/verify", c.UserHandler.VerifyEmail)
		user.Get("/me", auth, c.UserHandler.Me)
		user.Patch("/update", auth, c.UserHandler.UpdateUser)
		user.Post("/avatar", auth, c.UserHandler.UploadAvatar)
		user.Get("/subscriptions", auth, c.SubscriptionHandler.GetSubscriptions)
		user.Get("", optional, c.UserHandler.GetUsers)
		user.Get("/:id", optional, c.UserHandler.GetUser)
		user.Post("/:id/subscribe", auth, c.SubscriptionHandler.Subscribe)
		user.Delete("/:id/subscribe", auth, c.SubscriptionHandler.Unsubscribe)
	}
}

func (c *Config) Catalog() {
	tags := c.App.Group("/api/v1/tags")
	tags.Get("", c.CatalogHandler.GetTags)
	tags.Get("/:id", c.CatalogHandler.GetTagDetail)

	ingredients := c.App.Group("/api/v1/ingredients")
	ingredients.Get("", c.CatalogHandler.GetIngredients)
	ingredients.Get("/:id", c.CatalogHandler.GetIngredientDetail)
}

func (c *Config) Recipes() {
	recipes := c.App.Group("/api/v1/recipes")
	auth := c.Middleware.AuthMiddleware(c.JWTService)
	optional := c.Middleware.OptionalAuthMiddleware(c.JWTService)

	// Fixed paths before the :id wildcard.
	recipes.Get("/download_shopping_cart", auth, c.RecipeHandler.DownloadShoppingCart)

	recipes.Get("", optional, c.RecipeHandler.GetRecipes)
	recipes.Post("", auth, c.RecipeHandler.CreateRecipe)
	recipes.Get("/:id", optional, c.RecipeHandler.GetRecipeDetail)
	recipes.Patch("/:id", auth, c.RecipeHandler.UpdateRecipe)
	recipes.Delete("/:id", auth, c.RecipeHandler.DeleteRecipe)
	recipes.Post("/:id/image", auth, c.RecipeHandler.UploadRecipeImage)
	recipes.Post("/:id/favorite", auth, c.RecipeHandler.AddFavorite)
	recipes.Delete("/:id/favorite", auth, c.RecipeHandler.RemoveFavorite)
	recipes.Post("/:id/shopping_cart", auth, c.RecipeHandler.AddToCart)
	recipes.Delete("/:id/shopping_cart", auth, c.RecipeHandler.RemoveFromCart)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
