package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/password"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// UserService handles registration, authentication, and account updates.
type UserService struct {
	userRepo repository.UserRepository
}

// RegisterInput carries the fields of a registration submission.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateAccountInput carries the fields of an account-update submission.
// Image is the already-stored avatar filename; empty means keep the
// current one.
type UpdateAccountInput struct {
	UserID   uint
	Username string
	Email    string
	Image    string
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register validates the input, hashes the password, and creates the
// account with the sentinel default avatar.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := password.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
		Image:    models.DefaultAvatar,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate resolves the account for the given credentials. It
// returns the same authentication error for an unknown email and for a
// wrong password, so callers cannot probe which accounts exist.
func (s *UserService) Authenticate(ctx context.Context, email, plaintext string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(user.Password, plaintext) {
		return nil, models.NewUnauthorizedError("Login unsuccessful. Please check email and password")
	}
	return user, nil
}

// GetByID returns the user with the given ID.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateAccount updates username, email, and optionally the avatar
// filename, committing all changes in a single save.
func (s *UserService) UpdateAccount(ctx context.Context, in UpdateAccountInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user.Username = in.Username
	user.Email = in.Email
	if in.Image != "" {
		user.Image = in.Image
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
