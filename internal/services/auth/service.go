package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	domaintoken "github.com/ticketon/ticketon/internal/domain/token"
	"github.com/ticketon/ticketon/internal/domain/user"
	"github.com/ticketon/ticketon/internal/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrLoginTaken         = errors.New("login already registered")
	ErrInvalidLogin       = errors.New("login must be 2-16 characters")
)

type RegisterRequest struct {
	Login      string
	Password   string
	FirstName  string
	MiddleName string
	LastName   string
	Role       user.Role
}

// AuthInfo is the login response payload: the profile plus the fresh pair.
type AuthInfo struct {
	UserID           int64     `json:"user_id"`
	Login            string    `json:"login"`
	FirstName        string    `json:"first_name"`
	MiddleName       string    `json:"middle_name"`
	LastName         string    `json:"last_name"`
	Role             user.Role `json:"role"`
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAtAccess  time.Time `json:"expires_at_access"`
	ExpiresAtRefresh time.Time `json:"expires_at_refresh"`
}

// Service orchestrates registration and interactive login.
type Service struct {
	users  user.Repo
	tokens domaintoken.Repo
	gen    *token.Generator
	log    *zap.Logger
}

func NewService(users user.Repo, tokens domaintoken.Repo, gen *token.Generator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, tokens: tokens, gen: gen, log: log.With(zap.String("component", "auth.service"))}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	if n := len(req.Login); n < 2 || n > 16 {
		return nil, ErrInvalidLogin
	}
	exists, err := s.users.ExistsByLogin(ctx, req.Login)
	if err != nil {
		return nil, fmt.Errorf("check login: %w", err)
	}
	if exists {
		return nil, ErrLoginTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := req.Role
	if role == "" {
		role = user.RoleBuyer
	}
	u := &user.User{
		Login:      req.Login,
		Password:   string(hash),
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Role:       role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("login", u.Login))
	return u, nil
}

// Login verifies credentials and issues a fresh pair. An existing token
// record is overwritten in place; a first login creates one. The existence
// check and the insert are not atomic: two concurrent first logins race, and
// the loser surfaces the store's conflict error to retry.
func (s *Service) Login(ctx context.Context, login, password string) (*AuthInfo, error) {
	u, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.gen.AccessAndRefresh(u)
	if err != nil {
		return nil, fmt.Errorf("issue token pair: %w", err)
	}

	rec := &domaintoken.Record{
		UserID:           u.ID,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		IssuedAt:         pair.IssuedAt,
		ExpiresAtAccess:  pair.ExpiresAtAccess,
		ExpiresAtRefresh: pair.ExpiresAtRefresh,
	}
	exists, err := s.tokens.ExistsByUserID(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("check token record: %w", err)
	}
	if exists {
		err = s.tokens.Update(ctx, rec)
	} else {
		err = s.tokens.Save(ctx, rec)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("user authenticated", zap.String("login", u.Login))
	return &AuthInfo{
		UserID:           u.ID,
		Login:            u.Login,
		FirstName:        u.FirstName,
		MiddleName:       u.MiddleName,
		LastName:         u.LastName,
		Role:             u.Role,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		ExpiresAtAccess:  pair.ExpiresAtAccess,
		ExpiresAtRefresh: pair.ExpiresAtRefresh,
	}, nil
}
