package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"coldstore-backend/internal/auth"
	"coldstore-backend/internal/models"
	"coldstore-backend/internal/repositories"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

var validRoles = map[string]bool{
	"admin":      true,
	"accountant": true,
	"employee":   true,
}

// UserService handles authentication and user management.
type UserService struct {
	users *repositories.UserRepository
	jwt   *auth.JWTManager
}

func NewUserService(users *repositories.UserRepository, jwt *auth.JWTManager) *UserService {
	return &UserService{users: users, jwt: jwt}
}

// Signup creates the first account as admin; later self-signups come in as
// employees until an admin promotes them.
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if req.Name == "" {
		return nil, &models.ValidationError{Field: "name", Message: "is required"}
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, &models.ValidationError{Field: "email", Message: "is required"}
	}
	if len(req.Password) < 8 {
		return nil, &models.ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &models.ValidationError{Field: "email", Message: "already registered"}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := "employee"
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		role = "admin"
	}

	user := &models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	log.Printf("[Auth] signup %s as %s", user.Email, user.Role)
	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *UserService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if !validRoles[req.Role] {
		return nil, &models.ValidationError{Field: "role", Message: "must be admin, accountant or employee"}
	}
	if len(req.Password) < 8 {
		return nil, &models.ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &models.ValidationError{Field: "email", Message: "already registered"}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Update(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !validRoles[req.Role] {
		return nil, &models.ValidationError{Field: "role", Message: "must be admin, accountant or employee"}
	}

	user.Name = req.Name
	user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user.Phone = req.Phone
	user.Role = req.Role
	user.IsActive = req.IsActive
	if req.Password != "" {
		if len(req.Password) < 8 {
			return nil, &models.ValidationError{Field: "password", Message: "must be at least 8 characters"}
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.users.Delete(ctx, id)
}
