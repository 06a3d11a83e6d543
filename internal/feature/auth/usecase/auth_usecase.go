package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"kanban_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// ユーザー名・メールアドレス・外部アカウントが重複する場合、ErrUserAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByUsername はユーザー名に一致するユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByEmail はメールアドレスに一致するユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByProvider は外部プロバイダーとそのサブジェクトに一致するユーザーを取得します。
	FindByProvider(ctx context.Context, provider, subject string) (*entity.User, error)

	// UpdateFields は指定カラムのみを1回のUPDATEで更新します。
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
}

// TokenIssuer はトークン発行のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	// Issue は指定されたユーザー名をsubjectとする署名済みトークンを生成します。
	Issue(username string) (string, error)
}

// SignupInput は新規登録の入力値です。
type SignupInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// AuthResult はログイン・登録成功時の結果です。
type AuthResult struct {
	Token     string
	Principal entity.Principal
}

// AuthUsecase は認証ビジネスロジックを実装します。
type AuthUsecase struct {
	users     UserRepository
	tokens    TokenIssuer
	cost      int
	dummyHash []byte
}

// Option はAuthUsecaseの設定を変更します。
type Option func(*AuthUsecase)

// WithBcryptCost はbcryptのコストを変更します（テスト用）。
func WithBcryptCost(cost int) Option {
	return func(u *AuthUsecase) { u.cost = cost }
}

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, tokens TokenIssuer, opts ...Option) (*AuthUsecase, error) {
	u := &AuthUsecase{
		users:  users,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(u)
	}

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ。
	// 実際のハッシュと同じコストで生成し、比較時間を揃えます。
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), u.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to create dummy hash: %w", err)
	}
	u.dummyHash = dummy
	return u, nil
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters long", ErrWeakPassword, minPasswordLength)
	}
	return nil
}

// HashPassword はパスワードをbcryptでハッシュ化します。
func (u *AuthUsecase) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録し、トークンを発行します。
func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	// パスワード強度を検証
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hashed, err := u.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Username: in.Username,
		Email:    in.Email,
		Password: &hashed,
		FullName: in.FullName,
		Provider: entity.ProviderLocal,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return u.issue(entity.NewLocalPrincipal(user))
}

// Login はユーザー名とパスワードでユーザーを認証し、成功時にトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合やパスワード未設定の場合でもbcrypt比較を実行します。
// 失敗理由に関わらず ErrInvalidCredentials を返します。
func (u *AuthUsecase) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	passwordHash := u.dummyHash
	if user != nil && user.HasPassword() {
		passwordHash = []byte(*user.Password)
	}

	// タイミング攻撃防止のため、常にパスワードを検証
	compareErr := bcrypt.CompareHashAndPassword(passwordHash, []byte(password))

	if user == nil || !user.HasPassword() || compareErr != nil {
		slog.DebugContext(ctx, "password login rejected", "username", username)
		return nil, ErrInvalidCredentials
	}

	return u.issue(entity.NewLocalPrincipal(user))
}

func (u *AuthUsecase) issue(p entity.Principal) (*AuthResult, error) {
	token, err := u.tokens.Issue(p.Username())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{Token: token, Principal: p}, nil
}
