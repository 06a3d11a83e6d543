package dto

import "kanban_backend/internal/feature/auth/usecase"

// AuthResponse はログイン・登録成功時のレスポンスです。
type AuthResponse struct {
	Token           string `json:"token"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	FullName        string `json:"fullName"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// NewAuthResponse はAuthResultからレスポンスを組み立てます。
func NewAuthResponse(r *usecase.AuthResult) AuthResponse {
	return AuthResponse{
		Token:           r.Token,
		Username:        r.Principal.Username(),
		Email:           r.Principal.Email(),
		FullName:        r.Principal.FullName(),
		ProfileImageURL: r.Principal.ProfileImageURL(),
	}
}
