package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tasktracker/internal/auth"
	"tasktracker/internal/errors"
	"tasktracker/internal/model"
)

func newUserService(repo *MockUserRepository) UserService {
	authSvc := NewAuthService(repo, auth.NewJWTService("test-secret", 0))
	// nil cache degrades to a no-op, same as an unreachable redis
	return NewUserService(repo, authSvc, nil)
}

func TestUserService_GetUser(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name          string
		id            string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:          "malformed id is a 404",
			id:            "42",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: errors.ErrUserNotFound,
		},
		{
			name: "unknown id is a 404",
			id:   userID.String(),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrUserNotFound,
		},
		{
			name: "existing user",
			id:   userID.String(),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Email: "u@x.com"}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			svc := newUserService(mockRepo)

			user, err := svc.GetUser(context.Background(), tt.id)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "u@x.com", user.Email)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateUser(t *testing.T) {
	userID := uuid.New()

	t.Run("role and email change", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Email: "old@x.com", Role: model.RoleUser}, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
		svc := newUserService(mockRepo)

		email := "new@x.com"
		role := model.RoleAdmin
		user, err := svc.UpdateUser(context.Background(), userID.String(), UpdateUserInput{Email: &email, Role: &role})

		assert.NoError(t, err)
		assert.Equal(t, "new@x.com", user.Email)
		assert.Equal(t, model.RoleAdmin, user.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("malformed email rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Email: "old@x.com"}, nil)
		svc := newUserService(mockRepo)

		email := "not-an-email"
		_, err := svc.UpdateUser(context.Background(), userID.String(), UpdateUserInput{Email: &email})

		assert.ErrorIs(t, err, errors.ErrValidation)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Role: model.RoleUser}, nil)
		svc := newUserService(mockRepo)

		role := "superuser"
		_, err := svc.UpdateUser(context.Background(), userID.String(), UpdateUserInput{Role: &role})

		assert.ErrorIs(t, err, errors.ErrValidation)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("password change is re-hashed", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, PasswordHash: "old-hash"}, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
		svc := newUserService(mockRepo)

		password := "newpassword"
		user, err := svc.UpdateUser(context.Background(), userID.String(), UpdateUserInput{Password: &password})

		assert.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)))
	})

	t.Run("no password field means no re-hash", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, PasswordHash: "stored-hash"}, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
		svc := newUserService(mockRepo)

		email := "new@x.com"
		user, err := svc.UpdateUser(context.Background(), userID.String(), UpdateUserInput{Email: &email})

		assert.NoError(t, err)
		assert.Equal(t, "stored-hash", user.PasswordHash)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	userID := uuid.New()

	t.Run("existing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID}, nil)
		mockRepo.On("Delete", mock.Anything, userID).Return(nil)
		svc := newUserService(mockRepo)

		assert.NoError(t, svc.DeleteUser(context.Background(), userID.String()))
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
		svc := newUserService(mockRepo)

		assert.ErrorIs(t, svc.DeleteUser(context.Background(), userID.String()), errors.ErrUserNotFound)
	})
}
