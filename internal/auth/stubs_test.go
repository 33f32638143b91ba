package auth

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/stockroom/internal/users"
	"github.com/angelmondragon/stockroom/pkg/db/models"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type stubUserRepository struct {
	mu        sync.Mutex
	data      map[string]*models.User
	created   *models.User
	findErr   error
	createErr error
	nextID    uint64
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{data: map[string]*models.User{}}
}

func (s *stubUserRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	if user, ok := s.data[login]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, exists := s.data[dto.Login]; exists {
		return nil, users.ErrDuplicateLogin
	}
	s.nextID++
	user := dto.ToModel()
	user.ID = s.nextID
	s.data[user.Login] = user
	s.created = user
	return user, nil
}

type stubAuditor struct {
	mu       sync.Mutex
	messages []string
	failTx   error
}

func (s *stubAuditor) Record(ctx context.Context, message string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

func (s *stubAuditor) Within(ctx context.Context, message string, at time.Time, fn func(tx *gorm.DB) error) error {
	if err := fn(nil); err != nil {
		return err
	}
	if s.failTx != nil {
		return s.failTx
	}
	s.Record(ctx, message, at)
	return nil
}

func (s *stubAuditor) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}
