package auth

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/example/homecook/pkg/config"
	"github.com/example/homecook/pkg/models"
	"github.com/example/homecook/pkg/table"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLen = 6

// Mailer delivers confirmation links.
type Mailer interface {
	SendConfirmation(ctx context.Context, email, token string) error
}

// LogMailer writes confirmation tokens to the log; used in development.
type LogMailer struct {
	Logger *zap.Logger
}

func (m LogMailer) SendConfirmation(_ context.Context, email, token string) error {
	m.Logger.Info("Confirmation email", zap.String("email", email), zap.String("token", token))
	return nil
}

type SignUpInput struct {
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Role        models.Role `json:"role"`
	KitchenName string      `json:"kitchen_name"`
	Address     string      `json:"address"`
}

// Service implements sign-up, sign-in and sessions over the table API.
type Service struct {
	db       table.API
	sessions SessionStore
	mailer   Mailer
	cfg      config.AuthConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(db table.API, sessions SessionStore, mailer Mailer, cfg config.AuthConfig, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		sessions: sessions,
		mailer:   mailer,
		cfg:      cfg,
		logger:   logger.Named("auth"),
		now:      time.Now,
	}
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, newError(CodeInvalidInput, "a valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, newError(CodeInvalidInput, "password must be at least 6 characters")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, newError(CodeInvalidInput, "name is required")
	}
	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer && role != models.RoleCooker {
		return nil, newError(CodeInvalidInput, "only customers and cookers can sign up")
	}
	if role == models.RoleCooker && strings.TrimSpace(in.KitchenName) == "" {
		return nil, newError(CodeInvalidInput, "kitchen name is required for cookers")
	}

	existing, err := s.db.Select(ctx, "users", table.Query{Filters: []table.Filter{table.Eq("email", email)}, Limit: 1})
	if err != nil {
		return nil, backendError(err)
	}
	if len(existing) > 0 {
		return nil, newError(CodeEmailTaken, "an account with this email already exists")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, backendError(err)
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Role:      role,
		Phone:     in.Phone,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.db.Insert(ctx, "users", table.Row{
		"id": user.ID, "name": user.Name, "email": user.Email, "role": string(user.Role),
		"avatar_url": "", "phone": user.Phone, "created_at": user.CreatedAt,
	}); err != nil {
		return nil, backendError(err)
	}

	token := uuid.NewString()
	if _, err := s.db.Insert(ctx, "credentials", table.Row{
		"user_id": user.ID, "password_hash": hash, "email_confirmed": false,
		"confirmation_token": token, "created_at": user.CreatedAt,
	}); err != nil {
		return nil, backendError(err)
	}

	var profileErr error
	switch role {
	case models.RoleCooker:
		_, profileErr = s.db.Insert(ctx, "cookers", table.Row{
			"id": uuid.NewString(), "user_id": user.ID, "kitchen_name": strings.TrimSpace(in.KitchenName),
		})
	default:
		_, profileErr = s.db.Insert(ctx, "customers", table.Row{
			"id": uuid.NewString(), "user_id": user.ID, "address": in.Address,
		})
	}
	if profileErr != nil {
		return nil, backendError(profileErr)
	}

	if err := s.mailer.SendConfirmation(ctx, email, token); err != nil {
		s.logger.Warn("Failed to send confirmation", zap.String("email", email), zap.Error(err))
	}
	return &user, nil
}

func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, newError(CodeInvalidCredentials, "invalid email or password")
	}

	cred, err := s.credential(ctx, table.Eq("user_id", user.ID))
	if err != nil {
		return nil, err
	}
	if cred == nil || !CheckPassword(cred.PasswordHash, password) {
		return nil, newError(CodeInvalidCredentials, "invalid email or password")
	}
	if !cred.EmailConfirmed {
		return nil, newError(CodeEmailNotConfirmed, "Email not confirmed")
	}

	return s.startSession(ctx, user)
}

// SignInWithOAuth returns the provider's authorize URL; the provider
// redirects back to the configured redirect URL.
func (s *Service) SignInWithOAuth(_ context.Context, provider string) (string, error) {
	base, ok := s.cfg.OAuthProviders[strings.ToLower(provider)]
	if !ok {
		return "", newError(CodeUnknownProvider, "unsupported sign-in provider: "+provider)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", backendError(err)
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("redirect_uri", s.cfg.RedirectURL)
	q.Set("state", uuid.NewString())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return backendError(err)
	}
	return nil
}

func (s *Service) CurrentUser(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, newError(CodeInvalidSession, "not signed in")
	}
	sess, err := s.sessions.Load(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, newError(CodeInvalidSession, "session not found or expired")
	}
	if err != nil {
		return nil, backendError(err)
	}

	// Role and existence come from the users row, not the sign-in snapshot.
	user, err := s.userByID(ctx, sess.Principal.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.logger.Warn("Failed to drop session of deleted user", zap.String("user_id", sess.Principal.UserID), zap.Error(err))
		}
		return nil, newError(CodeInvalidSession, "account no longer exists")
	}
	return &Principal{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}, nil
}

func (s *Service) ResendConfirmation(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return newError(CodeInvalidInput, "no account with this email")
	}
	cred, err := s.credential(ctx, table.Eq("user_id", user.ID))
	if err != nil {
		return err
	}
	if cred == nil {
		return newError(CodeInvalidInput, "no account with this email")
	}
	if cred.EmailConfirmed {
		return newError(CodeInvalidInput, "email already confirmed")
	}

	token := uuid.NewString()
	if _, err := s.db.Update(ctx, "credentials", table.Row{"confirmation_token": token}, table.Eq("user_id", user.ID)); err != nil {
		return backendError(err)
	}
	if err := s.mailer.SendConfirmation(ctx, user.Email, token); err != nil {
		return backendError(err)
	}
	return nil
}

func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	if token == "" {
		return newError(CodeInvalidInput, "confirmation token is required")
	}
	rows, err := s.db.Update(ctx, "credentials",
		table.Row{"email_confirmed": true, "confirmation_token": ""},
		table.Eq("confirmation_token", token))
	if err != nil {
		return backendError(err)
	}
	if len(rows) == 0 {
		return newError(CodeInvalidInput, "invalid or used confirmation token")
	}
	return nil
}

func (s *Service) startSession(ctx context.Context, user *models.User) (*Session, error) {
	sess := Session{
		Token: uuid.NewString(),
		Principal: Principal{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
			Role:   user.Role,
		},
		ExpiresAt: s.now().Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, sess, s.cfg.SessionTTL); err != nil {
		return nil, backendError(err)
	}
	s.logger.Info("Signed in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &sess, nil
}

func (s *Service) userByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.user(ctx, table.Eq("email", strings.ToLower(strings.TrimSpace(email))))
}

func (s *Service) userByID(ctx context.Context, id string) (*models.User, error) {
	return s.user(ctx, table.Eq("id", id))
}

func (s *Service) user(ctx context.Context, f table.Filter) (*models.User, error) {
	rows, err := s.db.Select(ctx, "users", table.Query{Filters: []table.Filter{f}, Limit: 1})
	if err != nil {
		return nil, backendError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var u models.User
	if err := table.Decode(rows[0], &u); err != nil {
		return nil, backendError(err)
	}
	return &u, nil
}

func (s *Service) credential(ctx context.Context, f table.Filter) (*models.Credential, error) {
	rows, err := s.db.Select(ctx, "credentials", table.Query{Filters: []table.Filter{f}, Limit: 1})
	if err != nil {
		return nil, backendError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var c models.Credential
	if err := table.Decode(rows[0], &c); err != nil {
		return nil, backendError(err)
	}
	return &c, nil
}
