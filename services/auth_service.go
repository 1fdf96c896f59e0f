package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/clubarena/championship-system/models"
	"github.com/clubarena/championship-system/repositories"
	"github.com/clubarena/championship-system/storage"
	"github.com/clubarena/championship-system/utils"
)

const tokenTTL = 24 * time.Hour

// RegisterInput is the sign-up payload. Ranking position comes from the
// federation directory import; new players without one register at 0 and are
// excluded from ranking-filtered championships until ranked.
type RegisterInput struct {
	FirstName       string        `json:"first_name"`
	LastName        string        `json:"last_name"`
	Email           string        `json:"email"`
	Password        string        `json:"password"`
	Gender          models.Gender `json:"gender"`
	BirthDate       time.Time     `json:"birth_date"`
	RankingPosition int           `json:"ranking_position"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Player, error)
	Login(ctx context.Context, email, password string) (string, *models.Player, error)
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	UploadAvatar(ctx context.Context, playerID int, contentType string, file io.Reader) (*models.Player, error)
}

type authService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	jwtSecret  []byte
	logger     *slog.Logger
}

func NewAuthService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader, jwtSecret []byte, logger *slog.Logger) AuthService {
	return &authService{
		playerRepo: playerRepo,
		uploader:   uploader,
		jwtSecret:  jwtSecret,
		logger:     logger,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Player, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrValidationFailed)
	}
	if !utils.IsValidEmail(input.Email) {
		return nil, fmt.Errorf("%w: email %q is invalid", ErrValidationFailed, input.Email)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: minimum 8 characters", ErrPasswordTooShort)
	}
	if input.Gender != models.GenderMale && input.Gender != models.GenderFemale {
		return nil, fmt.Errorf("%w: unknown gender %q", ErrValidationFailed, input.Gender)
	}
	if input.BirthDate.IsZero() || input.BirthDate.After(time.Now()) {
		return nil, fmt.Errorf("%w: birth date is invalid", ErrValidationFailed)
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	player := &models.Player{
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Email:           input.Email,
		PasswordHash:    hash,
		Role:            models.RolePlayer,
		Gender:          input.Gender,
		BirthDate:       input.BirthDate,
		RankingPosition: input.RankingPosition,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerEmailConflict) {
			return nil, fmt.Errorf("%w: %s", ErrEmailConflict, input.Email)
		}
		return nil, err
	}

	s.logger.Info("player registered", slog.Int("player_id", player.ID))
	return player, nil
}

// Login verifies the credentials and issues a signed token carrying the
// player id and role. Wrong email and wrong password produce the same error.
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.Player, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	player, err := s.playerRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !utils.CheckPasswordHash(password, player.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": player.ID,
		"role":    string(player.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	s.populateAvatarURL(player)
	return token, player, nil
}

func (s *authService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: player %d", ErrPlayerNotFound, id)
		}
		return nil, err
	}
	s.populateAvatarURL(player)
	return player, nil
}

// UploadAvatar stores the player's profile picture in the object store and
// records its key. A previous avatar is deleted best-effort.
func (s *authService) UploadAvatar(ctx context.Context, playerID int, contentType string, file io.Reader) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: player %d", ErrPlayerNotFound, playerID)
		}
		return nil, err
	}

	key := fmt.Sprintf("players/%d/avatar_%d", playerID, time.Now().UnixNano())
	uploaded, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for player %d: %w", playerID, err)
	}
	if err := s.playerRepo.UpdateAvatarKey(ctx, playerID, &uploaded.Key); err != nil {
		return nil, err
	}

	if player.AvatarKey != nil {
		if derr := s.uploader.Delete(ctx, *player.AvatarKey); derr != nil {
			s.logger.Warn("failed to delete previous avatar",
				slog.String("key", *player.AvatarKey), slog.Any("error", derr))
		}
	}

	player.AvatarKey = &uploaded.Key
	s.populateAvatarURL(player)
	return player, nil
}

func (s *authService) populateAvatarURL(player *models.Player) {
	if player.AvatarKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*player.AvatarKey)
	player.AvatarURL = &url
}
