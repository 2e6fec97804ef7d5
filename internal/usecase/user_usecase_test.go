package usecase

import (
	"testing"

	"shop_service/internal/domain"
	"shop_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserUseCase(store *memStore) *UserUseCase {
	return NewUserUseCase(memUsers{store}, fakeHasher{}, fakeTokens{}, logger.Discard())
}

func TestRegisterCreatesUserWithCart(t *testing.T) {
	store := newMemStore()
	uc := newUserUseCase(store)

	res, err := uc.Register(t.Context(), domain.RegisterInput{
		Email:     " Jane@Example.com ",
		Password:  "secret1",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", res.User.Email)
	assert.Equal(t, domain.RoleCustomer, res.User.Role)
	assert.Equal(t, "hashed:secret1", res.User.PasswordHash)
	assert.Equal(t, "token-for-"+res.User.ID.String(), res.Token)

	_, err = memCarts{store}.GetCartID(t.Context(), res.User.ID)
	assert.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	uc := newUserUseCase(newMemStore())

	_, err := uc.Register(t.Context(), domain.RegisterInput{
		Email:    "not-an-email",
		Password: "123",
		Role:     "owner",
	})
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.KindValidation, domainErr.Kind)

	paths := make([]string, 0, len(domainErr.Fields))
	for _, f := range domainErr.Fields {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"email", "password", "firstName", "lastName", "role"}, paths)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	uc := newUserUseCase(newMemStore())
	in := domain.RegisterInput{Email: "jane@example.com", Password: "secret1", FirstName: "Jane", LastName: "Doe"}

	_, err := uc.Register(t.Context(), in)
	require.NoError(t, err)

	in.Email = "JANE@example.com"
	_, err = uc.Register(t.Context(), in)
	require.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Equal(t, "User already exists with this email", err.Error())
}

func TestLogin(t *testing.T) {
	uc := newUserUseCase(newMemStore())
	_, err := uc.Register(t.Context(), domain.RegisterInput{
		Email: "admin@example.com", Password: "admin123", FirstName: "Admin", LastName: "User", Role: domain.RoleAdmin,
	})
	require.NoError(t, err)

	res, err := uc.Login(t.Context(), "Admin@example.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.User.Role)
	assert.NotEmpty(t, res.Token)

	_, wrongPassword := uc.Login(t.Context(), "admin@example.com", "nope")
	_, unknownEmail := uc.Login(t.Context(), "ghost@example.com", "admin123")
	for _, err := range []error{wrongPassword, unknownEmail} {
		require.True(t, domain.IsKind(err, domain.KindUnauthorized))
		assert.Equal(t, "Invalid credentials", err.Error())
	}

	_, err = uc.Login(t.Context(), "", "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
