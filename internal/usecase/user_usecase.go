package usecase

import (
	"context"
	"strings"

	"shop_service/internal/domain"

	"github.com/sirupsen/logrus"
)

const minPasswordLength = 6

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

type UserUseCase struct {
	userRepo domain.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	log      *logrus.Logger
}

func NewUserUseCase(repo domain.UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger *logrus.Logger) *UserUseCase {
	return &UserUseCase{
		userRepo: repo,
		hasher:   hasher,
		tokens:   tokens,
		log:      logger,
	}
}

// Register creates the user together with its cart and returns a session.
func (uc *UserUseCase) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	role := in.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	uc.log.Infof("Use Case: Attempting registration for email: %s", email)

	var problems fieldErrors
	if !isEmail(email) {
		problems.add("email", "Invalid email")
	}
	if len(in.Password) < minPasswordLength {
		problems.add("password", "Password must be at least 6 characters long")
	}
	if firstName == "" {
		problems.add("firstName", "First name is required")
	}
	if lastName == "" {
		problems.add("lastName", "Last name is required")
	}
	if !role.Valid() {
		problems.add("role", "Role must be admin or customer")
	}
	if err := problems.err(); err != nil {
		uc.log.Warnf("Use Case: Registration rejected for %s: %v", email, problems)
		return nil, err
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", email, err)
		return nil, err
	}

	user, err := uc.userRepo.CreateWithCart(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		FirstName:    firstName,
		LastName:     lastName,
	})
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to create user %s: %v", email, err)
		return nil, err
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to issue token for user %s: %v", user.ID, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User registered. ID: %s, Email: %s, Role: %s", user.ID, user.Email, user.Role)
	return &domain.AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials. Unknown emails and wrong passwords fail the
// same way.
func (uc *UserUseCase) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	uc.log.Infof("Use Case: Attempting authentication for email: %s", email)

	var problems fieldErrors
	if !isEmail(email) {
		problems.add("email", "Invalid email")
	}
	if password == "" {
		problems.add("password", "Password is required")
	}
	if err := problems.err(); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", email)
			return nil, domain.NewAuthError("Invalid credentials")
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", email, err)
		return nil, err
	}

	ok, err := uc.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		uc.log.Errorf("Use Case: Error comparing password hash for user %s: %v", user.ID, err)
		return nil, err
	}
	if !ok {
		uc.log.Warnf("Use Case: Auth failed - incorrect password for user %s", user.ID)
		return nil, domain.NewAuthError("Invalid credentials")
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to issue token for user %s: %v", user.ID, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Authentication successful for user %s", user.ID)
	return &domain.AuthResult{Token: token, User: user}, nil
}
