package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/auth"
	"github.com/wilson400hong/slop-museum/internal/model"
	"github.com/wilson400hong/slop-museum/internal/repository"
)

// AuthService handles session establishment: the GitHub OAuth callback and
// the local dev-login bypass. HTTP concerns (cookies, redirects) stay in
// the handler; this layer decides WHO gets a session.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenService
	passwords  *auth.PasswordService
	devPwdHash string // bcrypt hash of the dev-login password; empty disables dev-login
	logger     *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	devPwdHash string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		passwords:  passwords,
		devPwdHash: devPwdHash,
		logger:     logger,
	}
}

// AuthResult bundles the user and their freshly issued session token so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub turns a GitHub profile into a session: upsert the
// account keyed on the stable GitHub ID, refuse banned accounts, issue a
// token.
//
// Banned users are refused HERE, at session establishment, not just at
// submission time — their old cookies expire and they cannot get new ones.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service: GitHub user must not be nil")
	}

	user := &model.User{
		DisplayName: ghUser.Login,
		AvatarURL:   ghUser.AvatarURL,
		Provider:    "github",
		ProviderID:  strconv.FormatInt(ghUser.ID, 10),
	}
	if err := s.users.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service: upserting user (github id %d): %w", ghUser.ID, err)
	}

	return s.openSession(user)
}

// DevLogin establishes a session for a named local development account,
// guarded by a shared password. Disabled entirely unless a password hash
// was configured at startup.
func (s *AuthService) DevLogin(ctx context.Context, name, password string) (*AuthResult, error) {
	if s.devPwdHash == "" {
		return nil, apperror.Forbidden("dev login is disabled")
	}
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if err := s.passwords.Verify(s.devPwdHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid dev password")
	}

	user := &model.User{
		DisplayName: name,
		Provider:    "dev",
		ProviderID:  name,
	}
	if err := s.users.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service: upserting dev user %s: %w", name, err)
	}

	return s.openSession(user)
}

func (s *AuthService) openSession(user *model.User) (*AuthResult, error) {
	if user.Banned {
		return nil, apperror.Forbidden("account is banned")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("session opened",
		"user_id", user.ID,
		"provider", user.Provider)

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the account behind a session, for /api/me.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.Unauthorized("no session")
	}
	return s.users.GetUserByID(ctx, id)
}
