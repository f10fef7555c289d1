package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/foodgram/foodgram-backend/domain"
	"github.com/foodgram/foodgram-backend/entities"
	"github.com/foodgram/foodgram-backend/internal/utils/mailing"
	"github.com/foodgram/foodgram-backend/internal/utils/storage"
	"github.com/foodgram/foodgram-backend/pkg/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterUserRequest) (domain.RegisterUserResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		GetMe(ctx context.Context, userID string) (domain.UserResponse, error)
		GetUserByID(ctx context.Context, id string, requesterID string) (domain.UserResponse, error)
		GetUsers(ctx context.Context, page, limit int, requesterID string) ([]domain.UserResponse, int64, error)
		UpdateUser(ctx context.Context, req domain.UpdateUserRequest, userID string) error
		UploadAvatar(ctx context.Context, req domain.UploadAvatarRequest, userID string) (string, error)
		SendVerificationEmail(ctx context.Context, email string) error
		VerifyEmail(ctx context.Context, token string) error
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		s3             storage.AwsS3
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, s3 storage.AwsS3) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		s3:             s3,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterUserRequest) (domain.RegisterUserResponse, error) {
	if !usernamePattern.MatchString(req.Username) {
		return domain.RegisterUserResponse{}, domain.ErrInvalidUsername
	}

	if _, err := s.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return domain.RegisterUserResponse{}, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RegisterUserResponse{}, err
	}

	if _, err := s.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return domain.RegisterUserResponse{}, domain.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RegisterUserResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.RegisterUserResponse{}, err
	}

	user := &entities.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
		Role:      domain.RoleUser,
	}

	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RegisterUserResponse{}, domain.ErrEmailAlreadyExists
		}
		return domain.RegisterUserResponse{}, err
	}

	return domain.RegisterUserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrWrongCredentials
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrWrongCredentials
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String(), user.Role)
	return domain.LoginResponse{Token: token, Role: user.Role}, nil
}

func (s *userService) GetMe(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}

	return s.toUserResponse(ctx, user, userID)
}

func (s *userService) GetUserByID(ctx context.Context, id string, requesterID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}

	return s.toUserResponse(ctx, user, requesterID)
}

func (s *userService) GetUsers(ctx context.Context, page, limit int, requesterID string) ([]domain.UserResponse, int64, error) {
	users, count, err := s.userRepository.GetUsers(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.UserResponse, 0, len(users))
	for _, user := range users {
		res, err := s.toUserResponse(ctx, user, requesterID)
		if err != nil {
			return nil, 0, err
		}
		response = append(response, res)
	}

	return response, count, nil
}

func (s *userService) UpdateUser(ctx context.Context, req domain.UpdateUserRequest, userID string) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}

	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) UploadAvatar(ctx context.Context, req domain.UploadAvatarRequest, userID string) (string, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", err
	}

	if user.AvatarURL != "" {
		objectKey := s.s3.GetObjectKeyFromLink(user.AvatarURL)
		if objectKey != "" {
			_ = s.s3.DeleteFile(objectKey)
		}
	}

	avatarURL, err := s.s3.UploadFile(ctx, req.Avatar, "avatars")
	if err != nil {
		return "", err
	}

	user.AvatarURL = avatarURL
	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return "", err
	}

	return avatarURL, nil
}

func (s *userService) SendVerificationEmail(ctx context.Context, email string) error {
	user, err := s.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	token, err := s.jwtService.GenerateTokenEmail(
		map[string]any{"user_id": user.ID.String()},
		time.Hour*24,
	)
	if err != nil {
		return err
	}

	verifyLink := fmt.Sprintf("%s/api/v1/users/verify?token=%s", mailing.LoadMailConfig().AppURL, token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Confirm your email address by following <a href=%q>this link</a>.</p>",
		user.FirstName, verifyLink,
	)

	return mailing.SendMail(user.Email, "Confirm your email", body)
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateTokenEmail(token)
	if err != nil {
		return err
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return domain.ErrTokenInvalid
	}

	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	user.IsVerified = true
	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) toUserResponse(ctx context.Context, user *entities.User, requesterID string) (domain.UserResponse, error) {
	isSubscribed := false
	if requesterID != "" && requesterID != user.ID.String() {
		var err error
		isSubscribed, err = s.userRepository.IsSubscribed(ctx, requesterID, user.ID.String())
		if err != nil {
			return domain.UserResponse{}, err
		}
	}

	return domain.UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		AvatarURL:    user.AvatarURL,
		IsSubscribed: isSubscribed,
	}, nil
}
