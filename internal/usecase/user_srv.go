package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"railway-booking/internal/data/entity"
	"railway-booking/internal/data/repository"
	"railway-booking/internal/dto/request"
	"railway-booking/internal/dto/response"
	"railway-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error)
	// ChangePassword keeps the session identified by currentToken and revokes the rest
	ChangePassword(ctx context.Context, userID uuid.UUID, currentToken string, req *request.ChangePasswordRequest) error
}

type userService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	log         *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		log:         log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	if req == nil {
		return nil, invalidField("body", "This field is required")
	}
	if req.FullName != nil {
		trimmed := strings.TrimSpace(*req.FullName)
		req.FullName = &trimmed
	}
	if req.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &normalized
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		us.log.Warn("Update profile validation failed", zap.Any("errors", errs))
		return nil, &InvalidRequestError{Fields: errs}
	}

	user, err := us.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated := false

	if req.FullName != nil && *req.FullName != user.FullName {
		user.FullName = *req.FullName
		updated = true
	}

	if req.Email != nil && *req.Email != user.Email {
		existing, err := us.userRepo.FindByEmail(ctx, *req.Email)
		if err != nil {
			return nil, &PersistenceError{Op: "check email", Err: err}
		}
		if existing != nil && existing.ID != user.ID {
			return nil, ErrEmailTaken
		}
		user.Email = *req.Email
		updated = true
	}

	if req.Phone != nil && (user.Phone == nil || *req.Phone != *user.Phone) {
		phone := *req.Phone
		user.Phone = &phone
		updated = true
	}

	if updated {
		user.UpdatedAt = time.Now()
		if err := us.userRepo.Update(ctx, user); err != nil {
			return nil, &PersistenceError{Op: "update profile", Err: err}
		}
	}

	us.log.Info("Profile updated",
		zap.String("user_id", userID.String()),
		zap.Bool("was_updated", updated),
	)

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) ChangePassword(ctx context.Context, userID uuid.UUID, currentToken string, req *request.ChangePasswordRequest) error {
	if req == nil {
		return invalidField("body", "This field is required")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		us.log.Warn("Change password validation failed", zap.Any("errors", errs))
		return &InvalidRequestError{Fields: errs}
	}
	if req.NewPassword == req.OldPassword {
		return invalidField("new_password", "Must differ from the current password")
	}

	keep, err := uuid.Parse(currentToken)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := us.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		us.log.Warn("Change password rejected", zap.String("user_id", userID.String()))
		return ErrWrongPassword
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		us.log.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("process password: %w", err)
	}

	user.PasswordHash = hashed
	user.UpdatedAt = time.Now()
	if err := us.userRepo.Update(ctx, user); err != nil {
		return &PersistenceError{Op: "change password", Err: err}
	}

	revoked, err := us.sessionRepo.RevokeAllExcept(ctx, userID, keep)
	if err != nil {
		return &PersistenceError{Op: "revoke sessions", Err: err}
	}

	us.log.Info("Password changed",
		zap.String("user_id", userID.String()),
		zap.Int64("sessions_revoked", revoked),
	)
	return nil
}

func (us *userService) loadUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := us.userRepo.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, &PersistenceError{Op: "load profile", Err: err}
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
