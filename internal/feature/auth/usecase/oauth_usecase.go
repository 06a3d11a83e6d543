package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"kanban_backend/internal/feature/auth/domain/entity"
)

// ProviderClient は1つのOAuth2プロバイダーとのやり取りを抽象化します。
type ProviderClient interface {
	// AuthCodeURL は同意画面のURLを返します。verifierからS256のcode_challengeを付与します。
	AuthCodeURL(state, verifier string) string
	// FetchProfile は認可コードをトークンに交換し、検証済みのプロフィールを取得します。
	FetchProfile(ctx context.Context, code, verifier string) (*entity.ExternalProfile, error)
}

// StateStore はログイン途中のstateを保存します。
type StateStore interface {
	// Save はstateを有効期限付きで保存します。
	Save(ctx context.Context, s *entity.OAuthState) error
	// Consume はstateを取得と同時に削除します。存在しない場合はErrStateNotFoundを返します。
	Consume(ctx context.Context, state string) (*entity.OAuthState, error)
}

// IdentityResolver は外部プロフィールをローカルユーザーに対応付けます。
type IdentityResolver interface {
	Resolve(ctx context.Context, p entity.ExternalProfile) (entity.Principal, error)
}

// OAuthUsecase はstate/PKCEの管理、認可コードの交換、ユーザーの対応付けを行います。
type OAuthUsecase struct {
	providers map[string]ProviderClient
	states    StateStore
	resolver  IdentityResolver
	stateTTL  time.Duration
	now       func() time.Time
}

// NewOAuthUsecase はOAuthUsecaseを生成します。
func NewOAuthUsecase(providers map[string]ProviderClient, states StateStore, resolver IdentityResolver, stateTTL time.Duration) *OAuthUsecase {
	if stateTTL <= 0 {
		stateTTL = 10 * time.Minute
	}
	return &OAuthUsecase{
		providers: providers,
		states:    states,
		resolver:  resolver,
		stateTTL:  stateTTL,
		now:       time.Now,
	}
}

// Providers は設定済みプロバイダー名を昇順で返します。
func (u *OAuthUsecase) Providers() []string {
	names := make([]string, 0, len(u.providers))
	for name := range u.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Begin はstateとPKCE verifierを生成・保存し、プロバイダーの同意画面URLを返します。
func (u *OAuthUsecase) Begin(ctx context.Context, provider string) (string, error) {
	client, ok := u.providers[provider]
	if !ok {
		return "", ErrUnsupportedProvider
	}

	now := u.now()
	st := &entity.OAuthState{
		State:        uuid.NewString(),
		Provider:     provider,
		CodeVerifier: oauth2.GenerateVerifier(),
		ExpiresAt:    now.Add(u.stateTTL),
		CreatedAt:    now,
	}
	if err := u.states.Save(ctx, st); err != nil {
		return "", fmt.Errorf("save state: %w", err)
	}
	return client.AuthCodeURL(st.State, st.CodeVerifier), nil
}

// Complete はコールバックを処理します。stateを1回限り消費し、コード交換後にユーザーを解決します。
func (u *OAuthUsecase) Complete(ctx context.Context, provider, code, state string) (entity.Principal, error) {
	client, ok := u.providers[provider]
	if !ok {
		return entity.Principal{}, ErrUnsupportedProvider
	}
	if state == "" {
		return entity.Principal{}, ErrStateNotFound
	}

	st, err := u.states.Consume(ctx, state)
	if err != nil {
		return entity.Principal{}, err
	}
	if st.IsExpired(u.now()) {
		return entity.Principal{}, ErrStateNotFound
	}
	if st.Provider != provider {
		return entity.Principal{}, ErrStateMismatch
	}
	if code == "" {
		return entity.Principal{}, errors.New("missing authorization code")
	}

	profile, err := client.FetchProfile(ctx, code, st.CodeVerifier)
	if err != nil {
		return entity.Principal{}, fmt.Errorf("fetch %s profile: %w", provider, err)
	}
	profile.Provider = provider

	return u.resolver.Resolve(ctx, *profile)
}
