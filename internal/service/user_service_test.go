package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository/mocks"
)

type UserServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockUsers *mocks.MockUserRepository
	service   *userService
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockUsers = mocks.NewMockUserRepository(s.ctrl)
	s.service = newUserService(s.mockUsers, bcrypt.MinCost)
}

func (s *UserServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *UserServiceSuite) requireValidation(err error, message string) {
	s.T().Helper()
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal(message, verr.Message)
}

func (s *UserServiceSuite) TestRegisterValidation() {
	ctx := context.Background()

	s.Run("blank username", func() {
		_, err := s.service.Register(ctx, "  ", "secret", "a@example.com")
		s.requireValidation(err, "Missing required fields")
	})

	s.Run("blank password", func() {
		_, err := s.service.Register(ctx, "alice", "   ", "a@example.com")
		s.requireValidation(err, "Missing required fields")
	})

	s.Run("blank email", func() {
		_, err := s.service.Register(ctx, "alice", "secret", "")
		s.requireValidation(err, "Missing required fields")
	})

	s.Run("password longer than bcrypt accepts", func() {
		_, err := s.service.Register(ctx, "alice", strings.Repeat("p", 73), "a@example.com")
		s.requireValidation(err, "Password must be at most 72 bytes")
	})

	s.Run("malformed email", func() {
		_, err := s.service.Register(ctx, "alice", "secret", "not-an-email")
		s.requireValidation(err, "Invalid email address")
	})
}

func (s *UserServiceSuite) TestRegisterAcceptsPasswordAtBcryptLimit() {
	ctx := context.Background()
	password := strings.Repeat("p", 72)
	s.mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, domain.ErrNotFound)
	s.mockUsers.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(nil, domain.ErrNotFound)
	s.mockUsers.EXPECT().Create(gomock.Any(), gomock.Any()).Return(int64(1), nil)

	_, err := s.service.Register(ctx, "alice", password, "alice@example.com")
	s.NoError(err)
}

func (s *UserServiceSuite) TestRegisterRejectsTakenUsername() {
	ctx := context.Background()
	s.mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(&domain.User{ID: 1, Username: "alice"}, nil)

	_, err := s.service.Register(ctx, "alice", "secret", "alice@example.com")
	s.Require().ErrorIs(err, ErrUsernameTaken)
	s.ErrorIs(err, ErrUserAlreadyExists)
	s.ErrorIs(err, domain.ErrConflict)
}

func (s *UserServiceSuite) TestRegisterRejectsTakenEmailInAnyCase() {
	ctx := context.Background()
	s.mockUsers.EXPECT().GetByUsername(gomock.Any(), "bob").Return(nil, domain.ErrNotFound)
	s.mockUsers.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(&domain.User{ID: 1}, nil)

	_, err := s.service.Register(ctx, "bob", "secret", "  Alice@Example.COM ")
	s.Require().ErrorIs(err, ErrEmailTaken)
	s.ErrorIs(err, ErrUserAlreadyExists)
}

func (s *UserServiceSuite) TestRegisterStoresHashAndLowercasedEmail() {
	ctx := context.Background()
	var stored *domain.User

	s.mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, domain.ErrNotFound)
	s.mockUsers.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(nil, domain.ErrNotFound)
	s.mockUsers.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *domain.User) (int64, error) {
		stored = u
		u.ID = 7
		return 7, nil
	})

	user, err := s.service.Register(ctx, "alice", "s3cret-pass", "Alice@Example.com")
	s.Require().NoError(err)

	s.Equal(int64(7), user.ID)
	s.Equal("alice", user.Username)
	s.Equal("alice@example.com", user.Email)
	s.Empty(user.PasswordHash)
	s.False(user.CreatedAt.IsZero())

	s.Require().NotNil(stored)
	s.Equal("alice@example.com", stored.Email)
	s.NotEqual("s3cret-pass", stored.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
}

func (s *UserServiceSuite) TestRegisterMapsLostRaceToConflict() {
	ctx := context.Background()
	s.mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, domain.ErrNotFound)
	s.mockUsers.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(nil, domain.ErrNotFound)
	s.mockUsers.EXPECT().Create(gomock.Any(), gomock.Any()).Return(int64(0), domain.ErrConflict)

	_, err := s.service.Register(ctx, "alice", "secret", "alice@example.com")
	s.ErrorIs(err, ErrUserAlreadyExists)
}

func (s *UserServiceSuite) TestRegisterPropagatesStoreErrors() {
	ctx := context.Background()
	boom := errors.New("db down")
	s.mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, boom)

	_, err := s.service.Register(ctx, "alice", "secret", "alice@example.com")
	s.ErrorIs(err, boom)
	s.NotErrorIs(err, ErrUserAlreadyExists)
}

func (s *UserServiceSuite) TestAuthenticate() {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	s.Require().NoError(err)
	stored := &domain.User{ID: 3, Username: "alice", Email: "alice@example.com", PasswordHash: string(hash)}

	s.Run("correct password", func() {
		s.mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(stored, nil)
		user, err := s.service.Authenticate(ctx, "alice", "right")
		s.Require().NoError(err)
		s.Equal(int64(3), user.ID)
		s.Empty(user.PasswordHash)
	})

	s.Run("wrong password", func() {
		s.mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(stored, nil)
		_, err := s.service.Authenticate(ctx, "alice", "wrong")
		s.ErrorIs(err, ErrInvalidCredentials)
	})

	s.Run("unknown user looks the same as a wrong password", func() {
		s.mockUsers.EXPECT().GetByUsername(gomock.Any(), "mallory").Return(nil, domain.ErrNotFound)
		_, err := s.service.Authenticate(ctx, "mallory", "right")
		s.ErrorIs(err, ErrInvalidCredentials)
	})

	s.Run("username is trimmed like on registration", func() {
		s.mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(stored, nil)
		user, err := s.service.Authenticate(ctx, "  alice ", "right")
		s.Require().NoError(err)
		s.Equal(int64(3), user.ID)
	})

	s.Run("blank input never reaches the store", func() {
		_, err := s.service.Authenticate(ctx, "", "right")
		s.ErrorIs(err, ErrInvalidCredentials)
		_, err = s.service.Authenticate(ctx, "alice", "")
		s.ErrorIs(err, ErrInvalidCredentials)
		_, err = s.service.Authenticate(ctx, "   ", "right")
		s.ErrorIs(err, ErrInvalidCredentials)
	})

	s.Run("store failure is not a credential failure", func() {
		boom := errors.New("db down")
		s.mockUsers.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, boom)
		_, err := s.service.Authenticate(ctx, "alice", "right")
		s.ErrorIs(err, boom)
		s.NotErrorIs(err, ErrInvalidCredentials)
	})
}
