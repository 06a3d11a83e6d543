// Package dto はauthフィーチャーのリクエスト・レスポンスを定義します。
package dto

// SignupReq は /api/auth/signup のリクエストボディです。
// パスワードの上限72はbcryptが扱える長さです。
type SignupReq struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"fullName" binding:"max=100"`
}

// LoginReq は /api/auth/login のリクエストボディです。
// 失敗理由を区別しないため、ここでは必須チェックのみ行います。
type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
