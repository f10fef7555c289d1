package domain

import (
	"errors"
	"mime/multipart"
)

var (
	MessageSuccessRegister     = "user registered successfully"
	MessageSuccessLogin        = "login success"
	MessageSuccessGetMe        = "success get current user"
	MessageSuccessGetUser      = "success get user"
	MessageSuccessGetUsers     = "success get users"
	MessageSuccessUpdateUser   = "user updated successfully"
	MessageSuccessUploadAvatar = "avatar uploaded successfully"
	MessageSuccessSendVerify   = "verification email sent"
	MessageSuccessVerify       = "email verified successfully"

	MessageFailedRegister     = "failed to register user"
	MessageFailedLogin        = "failed to login"
	MessageFailedGetUser      = "failed to get user"
	MessageFailedGetUsers     = "failed to get users"
	MessageFailedUpdateUser   = "failed to update user"
	MessageFailedUploadAvatar = "failed to upload avatar"
	MessageFailedSendVerify   = "failed to send verification email"
	MessageFailedVerify       = "failed to verify email"

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrWrongCredentials   = errors.New("wrong email or password")
	ErrInvalidUsername    = errors.New("username contains invalid characters")
)

type (
	RegisterUserRequest struct {
		Email     string `json:"email" validate:"required,email"`
		Username  string `json:"username" validate:"required,max=150"`
		FirstName string `json:"first_name" validate:"required,max=150"`
		LastName  string `json:"last_name" validate:"required,max=150"`
		Password  string `json:"password" validate:"required,min=8"`
	}

	RegisterUserResponse struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"auth_token"`
		Role  string `json:"role"`
	}

	UserResponse struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		AvatarURL    string `json:"avatar_url,omitempty"`
		IsSubscribed bool   `json:"is_subscribed"`
	}

	UpdateUserRequest struct {
		FirstName string `json:"first_name" validate:"omitempty,max=150"`
		LastName  string `json:"last_name" validate:"omitempty,max=150"`
	}

	UploadAvatarRequest struct {
		Avatar *multipart.FileHeader `json:"avatar" form:"avatar" validate:"required"`
	}
)
