package services

import (
	"context"
	"errors"
	"log/slog"

	"inkfeed/app/auth"
	"inkfeed/app/domain"
	"inkfeed/app/models"
	"inkfeed/app/repositories"
)

// DefaultBcryptCost is used when no cost is configured.
const DefaultBcryptCost = 12

// LoginResult is handed back on a successful login.
type LoginResult struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// AuthService handles signup, login and the caller's status
type AuthService struct {
	users      repositories.UserRepository
	verifier   *auth.Verifier
	gate       *Gate
	bcryptCost int
	logger     *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repositories.UserRepository,
	verifier *auth.Verifier,
	gate *Gate,
	bcryptCost int,
	logger *slog.Logger,
) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &AuthService{
		users:      users,
		verifier:   verifier,
		gate:       gate,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Signup registers a new user. Every invalid field, including an email that
// is already taken, is reported at once.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	errs := in.Validate()
	in.normalize()

	if !hasField(errs, "email") {
		_, err := s.users.GetByEmail(in.Email)
		switch {
		case err == nil:
			errs.Add("email", "E-Mail address already exists!")
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, domain.StoreFailure("look up email", err)
		}
	}
	if len(errs) > 0 {
		return nil, domain.Invalid("Validation failed.", errs)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, domain.StoreFailure("hash password", err)
	}

	user := &models.User{
		Email:    in.Email,
		Password: hash,
		Name:     in.Name,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, domain.Invalid("Validation failed.", domain.FieldErrors{
				{Field: "email", Message: "E-Mail address already exists!"},
			})
		}
		return nil, domain.StoreFailure("create user", err)
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return user, nil
}

// Login checks the password and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	in := SignupInput{Email: email}
	in.normalize()

	user, err := s.users.GetByEmail(in.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, domain.Unauthenticated("A user with this email could not be found.")
	}
	if err != nil {
		return nil, domain.StoreFailure("look up user", err)
	}

	ok, err := auth.ComparePassword(user.Password, password)
	if err != nil {
		return nil, domain.StoreFailure("compare password", err)
	}
	if !ok {
		s.logger.DebugContext(ctx, "wrong password", "user_id", user.ID)
		return nil, domain.Unauthenticated("Wrong password!")
	}

	token, err := s.verifier.Issue(user)
	if err != nil {
		return nil, domain.StoreFailure("issue token", err)
	}
	return &LoginResult{Token: token, UserID: user.ID}, nil
}

// CurrentUser loads the caller's user record.
func (s *AuthService) CurrentUser(ctx context.Context, id auth.Identity) (*models.User, error) {
	if err := id.Require(); err != nil {
		return nil, err
	}
	return s.loadUser(id.UserID)
}

// Status returns the caller's status line.
func (s *AuthService) Status(ctx context.Context, id auth.Identity) (string, error) {
	user, err := s.CurrentUser(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Status, nil
}

// UpdateStatus replaces the caller's status line.
func (s *AuthService) UpdateStatus(ctx context.Context, id auth.Identity, in StatusInput) (*models.User, error) {
	adm, err := s.gate.Admit(ctx, Mutation{Op: OpUpdateStatus, Identity: id, Input: in})
	if err != nil {
		return nil, err
	}
	in.normalize()

	user, err := s.loadUser(adm.UserID)
	if err != nil {
		return nil, err
	}

	user.Status = in.Status
	user.Touch()
	if err := s.users.Update(user); err != nil {
		return nil, domain.StoreFailure("update status", err)
	}
	adm.Commit()
	return user, nil
}

func (s *AuthService) loadUser(userID string) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, domain.NotFound("User not found.")
	}
	if err != nil {
		return nil, domain.StoreFailure("load user", err)
	}
	return user, nil
}

func hasField(errs domain.FieldErrors, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
