package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"kanban_backend/internal/feature/auth/domain/entity"
)

// maxUsernameLength はusersテーブルのusernameカラム長と一致させます。
const maxUsernameLength = 50

// maxUsernameRetries はユーザー名の衝突時にサフィックスを付けて再試行する回数です。
const maxUsernameRetries = 3

var usernameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// IdentityBridge は外部プロバイダーで検証済みのプロフィールをローカルユーザーに対応付けます。
// 初回ログインでユーザーを作成し、2回目以降は既存ユーザーを再利用します。
type IdentityBridge struct {
	users UserRepository
}

// NewIdentityBridge はIdentityBridgeを生成します。
func NewIdentityBridge(users UserRepository) *IdentityBridge {
	return &IdentityBridge{users: users}
}

// Resolve はプロフィールに対応するユーザーを検索または作成し、ExternalUserのPrincipalを返します。
//
// 検索順序:
//  1. (provider, subject) で一致するユーザー
//  2. メールアドレスが一致するユーザー（ローカルアカウントであれば外部アカウントを紐付け）
//  3. 該当なしの場合はパスワードなしのユーザーを作成
//
// 同時に初回ログインした場合、一意制約により後続のINSERTが失敗するため、再検索して先行したユーザーを返します。
func (b *IdentityBridge) Resolve(ctx context.Context, p entity.ExternalProfile) (entity.Principal, error) {
	if p.Provider == "" || p.Subject == "" {
		return entity.Principal{}, ErrInvalidProfile
	}

	u, err := b.users.FindByProvider(ctx, p.Provider, p.Subject)
	switch {
	case err == nil:
		return b.refresh(ctx, u, p, false)
	case !errors.Is(err, ErrUserNotFound):
		return entity.Principal{}, fmt.Errorf("find by provider: %w", err)
	}

	if p.Email == "" {
		return entity.Principal{}, ErrEmailUnavailable
	}

	u, err = b.users.FindByEmail(ctx, p.Email)
	switch {
	case err == nil:
		return b.refresh(ctx, u, p, u.ProviderID == nil)
	case !errors.Is(err, ErrUserNotFound):
		return entity.Principal{}, fmt.Errorf("find by email: %w", err)
	}

	return b.create(ctx, p)
}

// create は外部ユーザーを作成します。
// 一意制約違反のうち同じ (provider, subject) が先に作成されていた場合はそのユーザーを返し、
// それ以外（生成したユーザー名が既に使われている場合）はサフィックスを付けて再試行します。
func (b *IdentityBridge) create(ctx context.Context, p entity.ExternalProfile) (entity.Principal, error) {
	u := newExternalUser(p)
	var err error
	for attempt := 0; attempt <= maxUsernameRetries; attempt++ {
		if attempt > 0 {
			u.Username = disambiguateUsername(DeriveUsername(p.Provider, p.Subject))
		}
		err = b.users.Create(ctx, u)
		if err == nil {
			return entity.NewExternalPrincipal(u), nil
		}
		if !errors.Is(err, ErrUserAlreadyExists) {
			return entity.Principal{}, fmt.Errorf("create user: %w", err)
		}
		// 同時ログインで先に作成されたユーザーを返す
		winner, findErr := b.users.FindByProvider(ctx, p.Provider, p.Subject)
		if findErr == nil {
			return entity.NewExternalPrincipal(winner), nil
		}
		if !errors.Is(findErr, ErrUserNotFound) {
			return entity.Principal{}, fmt.Errorf("find by provider: %w", findErr)
		}
	}
	return entity.Principal{}, fmt.Errorf("create user: %w", err)
}

// refresh は表示名とアバターを更新し、必要に応じて外部アカウントを紐付けます。
// 変更がなければUPDATEを発行しません。
func (b *IdentityBridge) refresh(ctx context.Context, u *entity.User, p entity.ExternalProfile, link bool) (entity.Principal, error) {
	fields := map[string]any{}

	if p.Name != "" && p.Name != u.FullName {
		fields["full_name"] = p.Name
	}
	// アップロード済みの画像は上書きしない
	if p.AvatarURL != "" && u.ProfileImageURL == nil {
		fields["profile_image_url"] = p.AvatarURL
	}
	if link {
		fields["provider"] = p.Provider
		fields["provider_id"] = p.Subject
	}

	if len(fields) == 0 {
		return entity.NewExternalPrincipal(u), nil
	}
	if err := b.users.UpdateFields(ctx, u.ID, fields); err != nil {
		return entity.Principal{}, fmt.Errorf("update user: %w", err)
	}

	if v, ok := fields["full_name"].(string); ok {
		u.FullName = v
	}
	if v, ok := fields["profile_image_url"].(string); ok {
		u.ProfileImageURL = &v
	}
	if link {
		provider, subject := p.Provider, p.Subject
		u.Provider = provider
		u.ProviderID = &subject
	}
	return entity.NewExternalPrincipal(u), nil
}

func newExternalUser(p entity.ExternalProfile) *entity.User {
	username := DeriveUsername(p.Provider, p.Subject)
	name := p.Name
	if name == "" {
		name = username
	}
	subject := p.Subject

	u := &entity.User{
		Username:   username,
		Email:      p.Email,
		FullName:   name,
		Provider:   p.Provider,
		ProviderID: &subject,
	}
	if p.AvatarURL != "" {
		avatar := p.AvatarURL
		u.ProfileImageURL = &avatar
	}
	return u
}

// DeriveUsername は "<provider>_<subject>" 形式のユーザー名を生成します。
// 英数字と "_.-" 以外は "_" に置き換え、50文字に切り詰めます。
func DeriveUsername(provider, subject string) string {
	name := usernameUnsafe.ReplaceAllString(strings.ToLower(provider)+"_"+subject, "_")
	if len(name) > maxUsernameLength {
		name = name[:maxUsernameLength]
	}
	return name
}

// disambiguateUsername はユーザー名に "_" と8桁のランダムな16進数を付加します。
// 結果が50文字を超える場合は元の名前側を切り詰めます。
func disambiguateUsername(base string) string {
	suffix := "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if len(base)+len(suffix) > maxUsernameLength {
		base = base[:maxUsernameLength-len(suffix)]
	}
	return base + suffix
}
