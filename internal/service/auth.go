package service

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/config"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
)

const (
	msgTokenExpired = "The token has expired"
	msgTokenInvalid = "No token was supplied, or token is invalid."
)

var (
	ErrLoginUserNotFound         = errors.New("user not found")
	ErrLoginPasswordDoesNotMatch = errors.New("password does not match")
)

type (
	Auth struct {
		db     *gorm.DB
		cfg    *config.Config
		logger *zap.SugaredLogger
	}

	Credentials struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	Token struct {
		AccessToken string
		Username    string
		ID          uint64
	}
)

func NewAuth(db *gorm.DB, cfg *config.Config, l *zap.SugaredLogger) *Auth {
	return &Auth{
		db:     db,
		cfg:    cfg,
		logger: l,
	}
}

// Login exchanges a username and password for a signed access token.
func (s *Auth) Login(ctx context.Context, in Credentials) (*Token, error) {
	user, err := s.checkCredentials(ctx, in.Username, in.Password)
	if err != nil {
		if errors.Is(err, ErrLoginUserNotFound) {
			return nil, apperr.Invalid("username", msgNoUsername)
		}
		if errors.Is(err, ErrLoginPasswordDoesNotMatch) {
			return nil, apperr.Unauthenticated(msgNotAuthed)
		}
		return nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &Token{
		AccessToken: token,
		Username:    user.Username,
		ID:          user.ID,
	}, nil
}

func (s *Auth) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(user.ID, 10),
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Auth) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	if raw == "" {
		return nil, apperr.Unauthenticated(msgTokenInvalid)
	}

	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperr.Unauthenticated(msgTokenExpired)
		}
		s.logger.Debugw("invalid token", "error", err)
		return nil, apperr.Unauthenticated(msgTokenInvalid)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, apperr.Unauthenticated(msgTokenInvalid)
	}
	user := models.User{}
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthenticated(msgTokenInvalid)
		}
		return nil, errors.Wrap(err, "find user in db")
	}
	return &user, nil
}

// BasicAuth resolves HTTP Basic credentials to their user.
func (s *Auth) BasicAuth(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.checkCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrLoginUserNotFound) || errors.Is(err, ErrLoginPasswordDoesNotMatch) {
			return nil, apperr.Unauthenticated(msgNotAuthed)
		}
		return nil, err
	}
	return user, nil
}

func (s *Auth) checkCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user := models.User{}
	res := s.db.WithContext(ctx).Where("username = ?", username).First(&user)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return nil, ErrLoginUserNotFound
		}
		return nil, errors.Wrap(res.Error, "find user in db")
	}

	if err := bcryptCheck(user.Password, password); err != nil {
		return nil, ErrLoginPasswordDoesNotMatch
	}
	return &user, nil
}

func bcryptGen(pass string, cost int) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), cost)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}
