package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"estate-api/internal/data/entity"
	"estate-api/internal/data/repository"
	"estate-api/internal/dto/request"
	"estate-api/internal/dto/response"
	"estate-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error)
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	GetUser(ctx context.Context, userID string) (*response.UserResponse, error)
	MakeAdmin(ctx context.Context, userID string) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, userID string) error
}

type userService struct {
	userRepo repository.UserRepository
	now      func() time.Time
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		now:      time.Now,
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, Invalid(errs)
	}

	user, err := us.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := capitalizeWords(*req.FullName)
		if name == "" {
			return nil, Invalid(map[string]string{"fullname": "This field is required"})
		}
		user.FullName = name
	}
	if req.Gender != nil {
		user.Gender = entity.Gender(*req.Gender)
	}
	if req.Avatar != nil {
		user.Avatar = strings.TrimSpace(*req.Avatar)
	}
	if user.Avatar == "" {
		user.Avatar = entity.DefaultAvatar(user.Gender)
	}
	user.UpdatedAt = us.now()

	if err := us.userRepo.Update(ctx, user); err != nil {
		return nil, us.writeError(err, "failed to update profile")
	}

	us.log.Info("Profile updated", zap.String("user_id", user.ID.String()))
	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	req.Normalize()

	users, err := us.userRepo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, Internal("failed to get users", err)
	}

	total, err := us.userRepo.CountAll(ctx)
	if err != nil {
		return nil, Internal("failed to count users", err)
	}

	userResponses := make([]response.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = response.UserToResponse(user)
	}

	us.log.Debug("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("per_page", req.PerPage),
	)

	return response.NewPaginatedResponse(userResponses, req.Page, req.PerPage, total), nil
}

func (us *userService) GetUser(ctx context.Context, userID string) (*response.UserResponse, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	return us.GetProfile(ctx, id)
}

func (us *userService) MakeAdmin(ctx context.Context, userID string) (*response.UserResponse, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	user, err := us.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return nil, Conflict("user is already an admin")
	}

	user.Role = entity.RoleAdmin
	user.UpdatedAt = us.now()
	if err := us.userRepo.Update(ctx, user); err != nil {
		return nil, us.writeError(err, "failed to update role")
	}

	us.log.Info("User promoted to admin", zap.String("user_id", user.ID.String()))
	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) DeleteUser(ctx context.Context, userID string) error {
	id, err := parseUserID(userID)
	if err != nil {
		return err
	}

	if err := us.userRepo.Delete(ctx, id); err != nil {
		return us.writeError(err, "failed to delete user")
	}

	us.log.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

func (us *userService) find(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, Internal("failed to get user", err)
	}
	if user == nil {
		return nil, NotFound(msgUserNotFound)
	}
	return user, nil
}

func (us *userService) writeError(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound(msgUserNotFound)
	}
	return Internal(msg, err)
}

func parseUserID(raw string) (uuid.UUID, error) {
	id, err := utils.ParseUUID(raw)
	if err != nil {
		return uuid.Nil, BadRequest("invalid user ID")
	}
	return id, nil
}
