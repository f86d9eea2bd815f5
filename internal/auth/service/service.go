package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkorchagin/datahub/internal/common/clock"
	commoncrypto "github.com/nkorchagin/datahub/internal/common/crypto"
	"github.com/nkorchagin/datahub/internal/common/logger"
	userdomain "github.com/nkorchagin/datahub/internal/user/domain"
	userrepo "github.com/nkorchagin/datahub/internal/user/repository"
)

type AuthService struct {
	repo        userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

type Deps struct {
	Repo        userrepo.Repository
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Log         *logger.Logger
}

func NewAuthService(deps Deps) *AuthService {
	return &AuthService{
		repo:        deps.Repo,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		clock:       deps.Clock,
		log:         deps.Log,
	}
}

type SignUpInput struct {
	Email       string
	Password    string
	Name        string
	Surname     string
	Affiliation string
	Orcid       string
}

// IsEmailAvailable reports whether no existing user holds the given email.
// Read-only; the create path still relies on the store's unique constraint
// because a concurrent signup can invalidate this answer.
func (s *AuthService) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "email_availability_check_failed",
		}).Errorf("email availability check failed: %v", err)
		return false, err
	}
	return !exists, nil
}

// SignUp creates a user with its profile. A duplicate email, whether found
// here or raised by the store during a concurrent signup, comes back as
// ErrEmailTaken.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (userdomain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"email":  input.Email,
		"action": "signup_attempt",
	}).Info("signup attempt")

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "signup_hash_failed",
		}).Errorf("signup failed: password hash error: %v", err)
		return userdomain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return userdomain.User{}, fmt.Errorf("failed to generate user id: %w", err)
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
		Profile: userdomain.Profile{
			Name:        input.Name,
			Surname:     input.Surname,
			Affiliation: input.Affiliation,
			Orcid:       input.Orcid,
		},
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrEmailAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  input.Email,
				"action": "signup_email_exists",
			}).Warn("signup failed: email already exists")
			return userdomain.User{}, ErrEmailTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "signup_create_failed",
		}).Errorf("signup failed: %v", err)
		return userdomain.User{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"email":   user.Email,
		"user_id": string(user.ID),
		"action":  "signup_success",
	}).Info("signup success")

	return user, nil
}

// Login verifies a plaintext password against the stored hash. Unknown email
// and wrong password both yield (zero, false, nil): the caller gets no signal
// to enumerate accounts. The error return is reserved for store failures.
func (s *AuthService) Login(ctx context.Context, email, password string) (userdomain.User, bool, error) {
	s.log.WithFields(ctx, logger.Fields{
		"email":  email,
		"action": "login_attempt",
	}).Info("login attempt")

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "login_user_not_found",
			}).Warn("login failed: unknown email")
			return userdomain.User{}, false, nil
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		return userdomain.User{}, false, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "login_invalid_password",
		}).Warn("login failed: invalid password")
		return userdomain.User{}, false, nil
	}

	s.log.WithFields(ctx, logger.Fields{
		"email":   user.Email,
		"user_id": string(user.ID),
		"action":  "login_success",
	}).Info("login success")

	return user, true, nil
}
