package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Phantom-VK/icrs/internal/model"
)

// defaultTokenTTL applies when the server omits expiresIn or sends a
// non-positive value.
const defaultTokenTTL = time.Hour

var errInvalidLoginResponse = errors.New("invalid login response from server")

// AuthService wraps the /auth and /users endpoints.
type AuthService struct {
	c *Client
}

func NewAuthService(c *Client) *AuthService {
	return &AuthService{c: c}
}

type SignupInput struct {
	Username   string `json:"username"`
	StudentID  string `json:"studentId"`
	Department string `json:"department"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (s *AuthService) Register(ctx context.Context, input SignupInput) (model.User, error) {
	var created model.User
	err := s.c.do(ctx, http.MethodPost, "/auth/signup", nil, input, &created)
	return created, err
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Login authenticates and persists the resulting session. The server sends
// the token lifetime in milliseconds; the absolute expiry is computed here,
// at login time. The email shown in the header comes from the token's
// subject claim — display-only, never checked.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.Session, error) {
	payload := map[string]string{"email": email, "password": password}

	var resp loginResponse
	if err := s.c.do(ctx, http.MethodPost, "/auth/login", nil, payload, &resp); err != nil {
		return model.Session{}, err
	}
	if resp.Token == "" {
		return model.Session{}, errInvalidLoginResponse
	}

	ttl := time.Duration(resp.ExpiresIn) * time.Millisecond
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	sess := model.Session{
		Token:  resp.Token,
		Expiry: time.Now().Add(ttl),
		Email:  email,
	}
	applyTokenClaims(&sess)

	if err := s.c.sessions.Set(ctx, sess); err != nil {
		return model.Session{}, err
	}
	s.c.log.Info("logged in", zap.String("email", sess.Email))
	return sess, nil
}

// applyTokenClaims fills display fields from the unverified token payload.
// The backend validates the token; the client only reads it for labels.
func applyTokenClaims(sess *model.Session) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(sess.Token, claims); err != nil {
		return
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		sess.Email = sub
	}
	if role, ok := claims["role"].(string); ok {
		sess.Role = role
	}
	if name, ok := claims["username"].(string); ok {
		sess.Username = name
	}
}

// Verify confirms a registration code. Success does not log the user in;
// the caller navigates to login separately.
func (s *AuthService) Verify(ctx context.Context, email, code string) (string, error) {
	payload := map[string]string{"email": email, "verificationCode": code}

	var message string
	if err := s.c.do(ctx, http.MethodPost, "/auth/verify", nil, payload, &message); err != nil {
		return "", err
	}
	if message == "" {
		message = "Account verified successfully."
	}
	return message, nil
}

func (s *AuthService) Resend(ctx context.Context, email string) (string, error) {
	query := url.Values{"email": []string{email}}

	var message string
	if err := s.c.do(ctx, http.MethodPost, "/auth/resend", query, nil, &message); err != nil {
		return "", err
	}
	if message == "" {
		message = "Verification code resent successfully."
	}
	return message, nil
}

func (s *AuthService) CurrentUser(ctx context.Context) (model.User, error) {
	var user model.User
	err := s.c.do(ctx, http.MethodGet, "/users/me", nil, nil, &user)
	return user, err
}

// Logout discards the local session. No network call; the token simply
// stops being sent.
func (s *AuthService) Logout(ctx context.Context) error {
	s.c.log.Info("logged out")
	return s.c.sessions.Clear(ctx)
}
