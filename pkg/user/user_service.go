package user

import (
	"context"
	"errors"
	"strings"

	"foodies-api/domain"
	"foodies-api/entities"
	"foodies-api/internal/utils/mailing"
	"foodies-api/internal/utils/storage"
	"foodies-api/pkg/jwt"
	"foodies-api/pkg/pagination"
	"foodies-api/pkg/relation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const avatarFolder = "avatars"

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
		Logout(ctx context.Context, userID string) error
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		GetProfile(ctx context.Context, viewerID, userID string) (domain.ProfileResponse, error)
		UpdateAvatar(ctx context.Context, userID string, req domain.UpdateAvatarRequest) (domain.AvatarResponse, error)
		GetFollowers(ctx context.Context, userID string, p pagination.Params) (pagination.Result[domain.UserResponse], error)
		GetFollowings(ctx context.Context, userID string, p pagination.Params) (pagination.Result[domain.UserResponse], error)
		Follow(ctx context.Context, userID string, req domain.IDRequest) (domain.FollowResponse, error)
		Unfollow(ctx context.Context, userID string, req domain.IDRequest) (domain.FollowResponse, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		ledger         relation.LedgerService
		s3             storage.AwsS3
		mailer         mailing.Mailer
		appURL         string
		logger         *zap.Logger
	}
)

// NewUserService wires the account flows. mailer may be nil, in which case
// no welcome email is sent.
func NewUserService(
	userRepository UserRepository,
	jwtService jwt.JWTService,
	ledger relation.LedgerService,
	s3 storage.AwsS3,
	mailer mailing.Mailer,
	appURL string,
	logger *zap.Logger,
) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		ledger:         ledger,
		s3:             s3,
		mailer:         mailer,
		appURL:         appURL,
		logger:         logger.Named("user"),
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.userRepository.CheckEmailExists(ctx, email)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if exists {
		return domain.AuthResponse{}, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	user, err := s.userRepository.RegisterUser(ctx, &entities.User{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hash),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.AuthResponse{}, domain.ErrEmailAlreadyExists
		}
		return domain.AuthResponse{}, err
	}

	res, err := s.issueToken(ctx, user)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	s.sendWelcome(user.Name, user.Email)
	return res, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AuthResponse{}, domain.ErrCredentialInvalid
		}
		return domain.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.AuthResponse{}, domain.ErrCredentialInvalid
	}

	return s.issueToken(ctx, user)
}

// issueToken stores the new token as the user's only valid session.
func (s *userService) issueToken(ctx context.Context, user *entities.User) (domain.AuthResponse, error) {
	token, err := s.jwtService.GenerateTokenUser(user.ID.String())
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if err := s.userRepository.UpdateToken(ctx, user.ID, &token); err != nil {
		return domain.AuthResponse{}, err
	}
	return domain.AuthResponse{Token: token, User: toUserResponse(user)}, nil
}

func (s *userService) sendWelcome(name, email string) {
	if s.mailer == nil {
		return
	}
	go func() {
		body, err := mailing.WelcomeBody(name, s.appURL)
		if err == nil {
			err = s.mailer.Send(email, "Welcome to Foodies", body)
		}
		if err != nil {
			s.logger.Warn("failed to send welcome email", zap.String("email", email), zap.Error(err))
		}
	}()
}

func (s *userService) Logout(ctx context.Context, userID string) error {
	id, err := domain.ParseID(userID)
	if err != nil {
		return err
	}
	return s.userRepository.UpdateToken(ctx, id, nil)
}

func (s *userService) getUser(ctx context.Context, userID string) (*entities.User, error) {
	id, err := domain.ParseID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// GetProfile returns the full card for the viewer's own profile and a
// reduced one for anybody else.
func (s *userService) GetProfile(ctx context.Context, viewerID, userID string) (domain.ProfileResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.ProfileResponse{}, err
	}

	followers, err := s.userRepository.CountFollowers(ctx, user.ID)
	if err != nil {
		return domain.ProfileResponse{}, err
	}

	res := domain.ProfileResponse{
		ID:              user.ID.String(),
		Name:            user.Name,
		Email:           user.Email,
		Avatar:          user.Avatar,
		OwnRecipesCount: user.OwnRecipesCount,
		FollowersCount:  followers,
	}
	if user.ID.String() != viewerID {
		return res, nil
	}

	favorites, err := s.userRepository.CountFavorites(ctx, user.ID)
	if err != nil {
		return domain.ProfileResponse{}, err
	}
	following, err := s.userRepository.CountFollowings(ctx, user.ID)
	if err != nil {
		return domain.ProfileResponse{}, err
	}
	res.FavoriteRecipesCount = &favorites
	res.FollowingCount = &following
	return res, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID string, req domain.UpdateAvatarRequest) (domain.AvatarResponse, error) {
	if req.Avatar == nil {
		return domain.AvatarResponse{}, domain.ErrAvatarRequired
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.AvatarResponse{}, err
	}

	key, err := s.s3.UploadFile(user.ID.String(), req.Avatar, avatarFolder, storage.AllowImage...)
	if err != nil {
		return domain.AvatarResponse{}, err
	}
	link := s.s3.GetPublicLinkKey(key)

	if err := s.userRepository.UpdateAvatar(ctx, user.ID, link); err != nil {
		return domain.AvatarResponse{}, err
	}

	if user.Avatar != nil {
		if old := s.s3.GetObjectKeyFromLink(*user.Avatar); old != "" {
			if err := s.s3.DeleteFile(old); err != nil {
				s.logger.Warn("failed to delete old avatar", zap.String("key", old), zap.Error(err))
			}
		}
	}

	return domain.AvatarResponse{Avatar: link}, nil
}

func (s *userService) GetFollowers(ctx context.Context, userID string, p pagination.Params) (pagination.Result[domain.UserResponse], error) {
	return s.listRelated(ctx, userID, p, s.userRepository.GetFollowers)
}

func (s *userService) GetFollowings(ctx context.Context, userID string, p pagination.Params) (pagination.Result[domain.UserResponse], error) {
	return s.listRelated(ctx, userID, p, s.userRepository.GetFollowings)
}

func (s *userService) listRelated(
	ctx context.Context,
	userID string,
	p pagination.Params,
	list func(context.Context, uuid.UUID, pagination.Params) ([]*entities.User, int64, error),
) (pagination.Result[domain.UserResponse], error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return pagination.Result[domain.UserResponse]{}, err
	}

	users, total, err := list(ctx, user.ID, p)
	if err != nil {
		return pagination.Result[domain.UserResponse]{}, err
	}

	items := make([]domain.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	return pagination.NewResult(p, total, items), nil
}

func (s *userService) Follow(ctx context.Context, userID string, req domain.IDRequest) (domain.FollowResponse, error) {
	if err := s.ledger.Follow(ctx, userID, req.ID); err != nil {
		return domain.FollowResponse{}, err
	}
	return s.followResponse(ctx, req.ID)
}

func (s *userService) Unfollow(ctx context.Context, userID string, req domain.IDRequest) (domain.FollowResponse, error) {
	if err := s.ledger.Unfollow(ctx, userID, req.ID); err != nil {
		return domain.FollowResponse{}, err
	}
	res, err := s.followResponse(ctx, req.ID)
	if errors.Is(err, domain.ErrUserNotFound) {
		// the target may have been deleted since it was followed
		return domain.FollowResponse{ID: req.ID}, nil
	}
	return res, err
}

func (s *userService) followResponse(ctx context.Context, targetID string) (domain.FollowResponse, error) {
	target, err := s.getUser(ctx, targetID)
	if err != nil {
		return domain.FollowResponse{}, err
	}
	return domain.FollowResponse{
		ID:     target.ID.String(),
		Name:   target.Name,
		Email:  target.Email,
		Avatar: target.Avatar,
	}, nil
}

func toUserResponse(user *entities.User) domain.UserResponse {
	return domain.UserResponse{
		ID:     user.ID.String(),
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
	}
}
