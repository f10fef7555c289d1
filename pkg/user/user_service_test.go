package user

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/foodgram/foodgram-backend/domain"
	"github.com/foodgram/foodgram-backend/entities"
	"github.com/foodgram/foodgram-backend/pkg/jwt"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubS3 struct{}

func (stubS3) UploadFile(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	return "https://example.com/" + folder + "/stub", nil
}
func (stubS3) DeleteFile(objectKey string) error       { return nil }
func (stubS3) GetObjectKeyFromLink(link string) string { return "" }

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

	if err := db.AutoMigrate(&entities.User{}, &entities.Subscription{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestService(t *testing.T, db *gorm.DB) UserService {
	t.Helper()
	return NewUserService(NewUserRepository(db), jwt.NewJWTService(), stubS3{})
}

func registerRequest(username string) domain.RegisterUserRequest {
	return domain.RegisterUserRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "correct-horse",
	}
}

func TestRegister_ThenLogin(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	res, err := service.Register(ctx, registerRequest("alice"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if res.Username != "alice" || res.ID == "" {
		t.Errorf("unexpected register response: %+v", res)
	}

	login, err := service.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Token == "" {
		t.Error("expected a token on successful login")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	if _, err := service.Register(ctx, registerRequest("alice")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := service.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, domain.ErrWrongCredentials) {
		t.Fatalf("expected ErrWrongCredentials, got %v", err)
	}

	// Unknown email gets the same error so nothing leaks about accounts.
	_, err = service.Login(ctx, domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, domain.ErrWrongCredentials) {
		t.Fatalf("expected ErrWrongCredentials for unknown email, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	if _, err := service.Register(ctx, registerRequest("alice")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	dup := registerRequest("alice2")
	dup.Email = "alice@example.com"
	if _, err := service.Register(ctx, dup); !errors.Is(err, domain.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	if _, err := service.Register(ctx, registerRequest("alice")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	dup := registerRequest("alice")
	dup.Email = "other@example.com"
	if _, err := service.Register(ctx, dup); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegister_InvalidUsername(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	tests := []struct {
		username string
		valid    bool
	}{
		{"alice", true},
		{"alice.smith", true},
		{"a+b@c-d_e", true},
		{"alice smith", false},
		{"alice!", false},
		{"алиса#", false},
	}

	for _, tt := range tests {
		req := registerRequest(tt.username)
		req.Email = uuid.New().String() + "@example.com"
		_, err := service.Register(ctx, req)
		if tt.valid && err != nil {
			t.Errorf("username %q should be accepted, got %v", tt.username, err)
		}
		if !tt.valid && !errors.Is(err, domain.ErrInvalidUsername) {
			t.Errorf("username %q should be rejected, got %v", tt.username, err)
		}
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	if _, err := service.GetUserByID(ctx, uuid.New().String(), ""); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUserByID_SubscribedFlag(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	alice, err := service.Register(ctx, registerRequest("alice"))
	if err != nil {
		t.Fatalf("Register alice failed: %v", err)
	}
	bob, err := service.Register(ctx, registerRequest("bob"))
	if err != nil {
		t.Fatalf("Register bob failed: %v", err)
	}

	if err := db.Create(&entities.Subscription{
		ID:       uuid.New(),
		UserID:   uuid.MustParse(alice.ID),
		AuthorID: uuid.MustParse(bob.ID),
	}).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}

	asAlice, err := service.GetUserByID(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetUserByID as alice failed: %v", err)
	}
	if !asAlice.IsSubscribed {
		t.Error("alice should see bob as subscribed")
	}

	anonymous, err := service.GetUserByID(ctx, bob.ID, "")
	if err != nil {
		t.Fatalf("GetUserByID anonymous failed: %v", err)
	}
	if anonymous.IsSubscribed {
		t.Error("anonymous requester must see is_subscribed false")
	}
}

func TestUpdateUser(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(t, db)
	ctx := context.Background()

	alice, err := service.Register(ctx, registerRequest("alice"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := service.UpdateUser(ctx, domain.UpdateUserRequest{FirstName: "Alicia"}, alice.ID); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	me, err := service.GetMe(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetMe failed: %v", err)
	}
	if me.FirstName != "Alicia" {
		t.Errorf("expected first name Alicia, got %q", me.FirstName)
	}
	if me.LastName != "User" {
		t.Errorf("untouched field should survive, got %q", me.LastName)
	}
}
