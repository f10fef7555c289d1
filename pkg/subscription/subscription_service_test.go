package subscription

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/foodgram/foodgram-backend/domain"
	"github.com/foodgram/foodgram-backend/entities"
	"github.com/foodgram/foodgram-backend/pkg/recipe"
	"github.com/foodgram/foodgram-backend/pkg/user"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&entities.User{},
		&entities.Subscription{},
		&entities.Ingredient{},
		&entities.Tag{},
		&entities.Recipe{},
		&entities.IngredientAmount{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestService(t *testing.T, db *gorm.DB) SubscriptionService {
	t.Helper()
	return NewSubscriptionService(
		NewSubscriptionRepository(db),
		user.NewUserRepository(db),
		recipe.NewRecipeRepository(db),
	)
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	t.Helper()
	u := &entities.User{
		ID:       uuid.New(),
		Email:    username + "@example.com",
		Username: username,
		Password: "hashed",
		Role:     domain.RoleUser,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return u
}

func createTestRecipe(t *testing.T, db *gorm.DB, author *entities.User, name string) *entities.Recipe {
	t.Helper()
	r := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    author.ID,
		Name:        name,
		Text:        "instructions",
		CookingTime: 15,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return r
}

func TestSubscribe_Self(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	u := createTestUser(t, db, "alice")

	if _, err := service.Subscribe(ctx, u.ID.String(), u.ID.String(), 0); !errors.Is(err, domain.ErrSelfSubscription) {
		t.Fatalf("expected ErrSelfSubscription, got %v", err)
	}
}

func TestSubscribe_UnknownAuthor(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	u := createTestUser(t, db, "alice")

	if _, err := service.Subscribe(ctx, uuid.New().String(), u.ID.String(), 0); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSubscribe_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if _, err := service.Subscribe(ctx, bob.ID.String(), alice.ID.String(), 0); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if _, err := service.Subscribe(ctx, bob.ID.String(), alice.ID.String(), 0); !errors.Is(err, domain.ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}
}

func TestUnsubscribe_NotSubscribed(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if err := service.Unsubscribe(ctx, bob.ID.String(), alice.ID.String()); !errors.Is(err, domain.ErrNotSubscribed) {
		t.Fatalf("expected ErrNotSubscribed, got %v", err)
	}
}

func TestSubscribe_ThenUnsubscribe(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if _, err := service.Subscribe(ctx, bob.ID.String(), alice.ID.String(), 0); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := service.Unsubscribe(ctx, bob.ID.String(), alice.ID.String()); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	// The pair can be re-created after removal.
	if _, err := service.Subscribe(ctx, bob.ID.String(), alice.ID.String(), 0); err != nil {
		t.Fatalf("re-Subscribe failed: %v", err)
	}
}

func TestGetSubscriptions_RecipesLimit(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	for i := 0; i < 3; i++ {
		createTestRecipe(t, db, bob, fmt.Sprintf("recipe-%d", i))
	}

	if _, err := service.Subscribe(ctx, bob.ID.String(), alice.ID.String(), 0); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	subs, count, err := service.GetSubscriptions(ctx, alice.ID.String(), 1, 20, 2)
	if err != nil {
		t.Fatalf("GetSubscriptions failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 subscription, got %d", count)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 author in page, got %d", len(subs))
	}

	sub := subs[0]
	if sub.ID != bob.ID.String() {
		t.Errorf("expected author %s, got %s", bob.ID, sub.ID)
	}
	if sub.RecipesCount != 3 {
		t.Errorf("expected recipes_count 3, got %d", sub.RecipesCount)
	}
	if len(sub.Recipes) != 2 {
		t.Errorf("expected recipes capped at 2, got %d", len(sub.Recipes))
	}
	if !sub.IsSubscribed {
		t.Error("expected is_subscribed true in subscription listing")
	}
}

func TestGetSubscriptions_Empty(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")

	subs, count, err := service.GetSubscriptions(ctx, alice.ID.String(), 1, 20, 0)
	if err != nil {
		t.Fatalf("GetSubscriptions failed: %v", err)
	}
	if count != 0 || len(subs) != 0 {
		t.Errorf("expected empty listing, got count=%d len=%d", count, len(subs))
	}
}
