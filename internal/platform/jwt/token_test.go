package jwtmw

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	return svc
}

// TestNewTokenService_InvalidConfig は秘密鍵やTTLが不正な場合にエラーとなることを検証します。
func TestNewTokenService_InvalidConfig(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService("secret", 0)
	assert.Error(t, err)
}

// TestTokenService_RoundTrip は発行したトークンが有効期限内に同じユーザー名へ検証されることを検証します。
func TestTokenService_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	for _, username := range []string{"alice", "google_1234567890", "user.with-dots"} {
		t.Run(username, func(t *testing.T) {
			tok, err := svc.Issue(username)
			require.NoError(t, err)

			got, err := svc.Verify(tok)
			require.NoError(t, err)
			assert.Equal(t, username, got)
		})
	}
}

// TestTokenService_Claims はsub/iat/expクレームとHS256署名を検証します。
func TestTokenService_Claims(t *testing.T) {
	issuedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, &fakeClock{t: issuedAt})

	tok, err := svc.Issue("alice")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)

	assert.Equal(t, "HS256", parsed.Method.Alg())
	assert.Equal(t, "alice", claims.Subject)
	assert.True(t, claims.IssuedAt.Time.Equal(issuedAt))
	assert.True(t, claims.ExpiresAt.Time.Equal(issuedAt.Add(time.Hour)))
}

// TestTokenService_Expiry は有効期限の前後で検証結果が変わることを検証します。
func TestTokenService_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	tok, err := svc.Issue("alice")
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour - time.Second)
	_, err = svc.Verify(tok)
	assert.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Second)
	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// TestTokenService_Tampered はヘッダ・ペイロード・署名のいずれを改ざんしても検証に失敗することを検証します。
func TestTokenService_Tampered(t *testing.T) {
	svc := newTestService(t, &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)})
	tok, err := svc.Issue("alice")
	require.NoError(t, err)

	sigStart := len(tok) - 43
	for i := 0; i < len(tok); i++ {
		if tok[i] == '.' {
			continue
		}
		// The final signature character carries padding bits only partially.
		if i > sigStart {
			continue
		}
		b := []byte(tok)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, err := svc.Verify(string(b))
		assert.ErrorIs(t, err, ErrInvalidToken, "tampered byte at %d", i)
	}
}

// TestTokenService_Rejects は不正な形式や署名方式のトークンがErrInvalidTokenになることを検証します。
func TestTokenService_Rejects(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, &fakeClock{t: now})

	valid := jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	noneTok, err := jwt.NewWithClaims(jwt.SigningMethodNone, valid).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512Tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, valid).SignedString([]byte(testSecret))
	require.NoError(t, err)

	otherSecretTok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, valid).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	noSub := valid
	noSub.Subject = ""
	noSubTok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noSub).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExp := valid
	noExp.ExpiresAt = nil
	noExpTok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noExp).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "abc.def"},
		{"alg none", noneTok},
		{"wrong hmac algorithm", hs512Tok},
		{"wrong secret", otherSecretTok},
		{"empty subject", noSubTok},
		{"missing exp", noExpTok},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Empty(t, got)
		})
	}
}

// TestTokenService_IssueEmptyUsername は空のユーザー名ではトークンを発行しないことを検証します。
func TestTokenService_IssueEmptyUsername(t *testing.T) {
	svc := newTestService(t, &fakeClock{t: time.Now()})
	_, err := svc.Issue("")
	assert.Error(t, err)
}
