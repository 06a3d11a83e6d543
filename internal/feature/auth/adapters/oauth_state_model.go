package adapters

import (
	"time"

	"kanban_backend/internal/feature/auth/domain/entity"
)

// OAuthStateModel is the GORM model for the oauth_states table.
type OAuthStateModel struct {
	State        string    `gorm:"primaryKey;size:64"`
	Provider     string    `gorm:"size:20;not null"`
	CodeVerifier string    `gorm:"size:128;not null"`
	ExpiresAt    time.Time `gorm:"index;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (OAuthStateModel) TableName() string {
	return "oauth_states"
}

// ToEntity converts the GORM model to a domain entity.
func (m *OAuthStateModel) ToEntity() *entity.OAuthState {
	return &entity.OAuthState{
		State:        m.State,
		Provider:     m.Provider,
		CodeVerifier: m.CodeVerifier,
		ExpiresAt:    m.ExpiresAt,
		CreatedAt:    m.CreatedAt,
	}
}

// OAuthStateModelFromEntity converts a domain entity to a GORM model.
func OAuthStateModelFromEntity(s *entity.OAuthState) *OAuthStateModel {
	return &OAuthStateModel{
		State:        s.State,
		Provider:     s.Provider,
		CodeVerifier: s.CodeVerifier,
		ExpiresAt:    s.ExpiresAt,
		CreatedAt:    s.CreatedAt,
	}
}
