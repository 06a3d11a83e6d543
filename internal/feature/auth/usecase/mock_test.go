package usecase

import (
	"context"
	"sync"

	"kanban_backend/internal/feature/auth/domain/entity"
)

// memUserRepository はUserRepositoryのインメモリ実装です。
// データベースと同様にusername・email・(provider, provider_id)の一意制約を検査します。
type memUserRepository struct {
	mu     sync.Mutex
	users  []*entity.User
	nextID uint

	// beforeCreate が設定されている場合、Create の一意制約検査の直前に呼ばれます。
	beforeCreate func(u *entity.User)

	creates int
	updates []map[string]any
}

var _ UserRepository = (*memUserRepository)(nil)

func (m *memUserRepository) insert(u *entity.User) error {
	for _, e := range m.users {
		if e.Username == u.Username || e.Email == u.Email {
			return ErrUserAlreadyExists
		}
		if u.ProviderID != nil && e.ProviderID != nil && e.Provider == u.Provider && *e.ProviderID == *u.ProviderID {
			return ErrUserAlreadyExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.users = append(m.users, &cp)
	return nil
}

func (m *memUserRepository) Create(_ context.Context, u *entity.User) error {
	if m.beforeCreate != nil {
		m.beforeCreate(u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	return m.insert(u)
}

func (m *memUserRepository) find(match func(*entity.User) bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memUserRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Username == username })
}

func (m *memUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Email == email })
}

func (m *memUserRepository) FindByProvider(_ context.Context, provider, subject string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool {
		return u.Provider == provider && u.ProviderID != nil && *u.ProviderID == subject
	})
}

func (m *memUserRepository) UpdateFields(_ context.Context, id uint, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, fields)
	for _, u := range m.users {
		if u.ID != id {
			continue
		}
		for k, v := range fields {
			s := v.(string)
			switch k {
			case "full_name":
				u.FullName = s
			case "profile_image_url":
				u.ProfileImageURL = &s
			case "provider":
				u.Provider = s
			case "provider_id":
				u.ProviderID = &s
			}
		}
		return nil
	}
	return ErrUserNotFound
}

func (m *memUserRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// mockTokenIssuer はTokenIssuerのモック実装です。
type mockTokenIssuer struct {
	// IssueFunc is called when the Issue method is invoked.
	IssueFunc func(username string) (string, error)
}

func (m *mockTokenIssuer) Issue(username string) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(username)
	}
	return "token-for-" + username, nil
}
