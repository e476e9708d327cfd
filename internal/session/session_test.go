package session

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Юнит-тесты сессионного токена:
//   - выпуск и проверка, уникальность токенов в одну миллисекунду;
//   - чувствительность к подмене любого символа;
//   - граница свежести 5h, отрицательное и будущее время выпуска;
//   - битый ввод и единственная ошибка-сентинел;
//   - атрибуты cookie.

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := New([]byte("test-secret"), 0)
	require.NoError(t, err)
	return s
}

// frozen фиксирует часы сервиса.
func frozen(s *Service, at time.Time) {
	s.now = func() time.Time { return at }
}

func TestNew_EmptySecret(t *testing.T) {
	_, err := New(nil, time.Hour)
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestNew_DefaultMaxAge(t *testing.T) {
	s := newTestService(t)
	require.Equal(t, 5*time.Hour, s.MaxAge())
}

func TestCreateVerify_RoundTrip(t *testing.T) {
	s := newTestService(t)

	pairs := [][2]string{
		{"u1", "admin"},
		{"env-admin", "admin"},
		{"3f2c6a0e-7c4b-4c3e-9a51-1d1f0b8a9e11", "editor"},
	}

	for _, p := range pairs {
		token, err := s.Create(p[0], p[1])
		require.NoError(t, err)

		claims, err := s.Verify(token)
		require.NoError(t, err)
		require.Equal(t, p[0], claims.UserID)
		require.Equal(t, p[1], claims.Role)
	}
}

func TestCreate_Format(t *testing.T) {
	s := newTestService(t)
	at := time.UnixMilli(1700000000123)
	frozen(s, at)

	token, err := s.Create("u1", "admin")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 5)
	require.Equal(t, "1700000000123", parts[0])
	require.Len(t, parts[1], 32)
	require.Equal(t, "u1", parts[2])
	require.Equal(t, "admin", parts[3])
	require.Len(t, parts[4], 64)
	require.Equal(t, strings.ToLower(parts[1]), parts[1])
	require.Equal(t, strings.ToLower(parts[4]), parts[4])
}

func TestCreate_RejectsDelimiterAndEmpty(t *testing.T) {
	s := newTestService(t)

	for _, tc := range [][2]string{
		{"", "admin"},
		{"u1", ""},
		{"u.1", "admin"},
		{"u1", "ad.min"},
		{"héllo wörld;x", "admin"},
		{"u 1", "admin"},
		{"u1", "admin;"},
		{"u1", "admin\n"},
		{`u"1`, "admin"},
	} {
		_, err := s.Create(tc[0], tc[1])
		require.ErrorIs(t, err, ErrInvalidField, "%q/%q", tc[0], tc[1])
	}
}

func TestCreate_CookieSafeFields(t *testing.T) {
	s := newTestService(t)

	for _, id := range []string{"env-admin", "9b2f6c1e-3d4a-4f5b-8c7d-0e1f2a3b4c5d", "user_1"} {
		token, err := s.Create(id, "editor")
		require.NoError(t, err)

		c := s.NewCookie(token, false)
		require.NoError(t, c.Valid())

		r := httptest.NewRequest(http.MethodGet, "/admin", nil)
		r.AddCookie(c)
		got, err := s.Verify(TokenFromRequest(r))
		require.NoError(t, err)
		require.Equal(t, id, got.UserID)
	}
}

func TestCreate_RandFailure(t *testing.T) {
	s := newTestService(t)
	s.rand = bytes.NewReader(nil)

	_, err := s.Create("u1", "admin")
	require.Error(t, err)
}

func TestCreate_UniqueInSameMillisecond(t *testing.T) {
	s := newTestService(t)
	frozen(s, time.UnixMilli(1700000000000))

	a, err := s.Create("u1", "admin")
	require.NoError(t, err)
	b, err := s.Create("u1", "admin")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NotEqual(t, a[strings.LastIndex(a, ".")+1:], b[strings.LastIndex(b, ".")+1:])
}

func TestVerify_TamperAnyCharacter(t *testing.T) {
	s := newTestService(t)

	token, err := s.Create("u1", "admin")
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		repl := byte('0')
		if token[i] == '0' {
			repl = '1'
		}
		tampered := token[:i] + string(repl) + token[i+1:]

		claims, err := s.Verify(tampered)
		require.ErrorIs(t, err, ErrInvalidToken, "position %d", i)
		require.Nil(t, claims)
	}
}

func TestVerify_StructuralTampering(t *testing.T) {
	s := newTestService(t)

	token, err := s.Create("u1", "admin")
	require.NoError(t, err)

	for _, tampered := range []string{
		token + ".",
		token + ".extra",
		"." + token,
		strings.Replace(token, ".admin.", ".editor.", 1),
		strings.ToUpper(token),
	} {
		claims, err := s.Verify(tampered)
		require.ErrorIs(t, err, ErrInvalidToken, tampered)
		require.Nil(t, claims)
	}
}

func TestVerify_OtherSecretRejected(t *testing.T) {
	s := newTestService(t)
	other, err := New([]byte("rotated-secret"), 0)
	require.NoError(t, err)

	token, err := s.Create("u1", "admin")
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	s := newTestService(t)
	issued := time.UnixMilli(1700000000000)

	frozen(s, issued)
	token, err := s.Create("u1", "admin")
	require.NoError(t, err)

	tests := []struct {
		name  string
		at    time.Time
		valid bool
	}{
		{"just_issued", issued, true},
		{"5h_minus_1s", issued.Add(5*time.Hour - time.Second), true},
		{"exactly_5h", issued.Add(5 * time.Hour), true},
		{"5h_plus_1ms", issued.Add(5*time.Hour + time.Millisecond), false},
		{"5h_plus_1s", issued.Add(5*time.Hour + time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frozen(s, tt.at)
			claims, err := s.Verify(token)
			if tt.valid {
				require.NoError(t, err)
				require.Equal(t, "u1", claims.UserID)
				return
			}
			require.ErrorIs(t, err, ErrInvalidToken)
			require.Nil(t, claims)
		})
	}
}

func TestVerify_IssueTimeOutOfRange(t *testing.T) {
	s := newTestService(t)
	now := time.UnixMilli(1700000000000)
	frozen(s, now)

	signed := func(ts int64) string {
		payload := strconv.FormatInt(ts, 10) + ".00.u1.admin"
		return payload + "." + s.sign(payload)
	}

	tests := []struct {
		name  string
		ts    int64
		valid bool
	}{
		{"min_int64", math.MinInt64, false},
		{"negative", -1, false},
		{"within_skew", now.Add(ClockSkew).UnixMilli(), true},
		{"beyond_skew", now.Add(ClockSkew).UnixMilli() + 1, false},
		{"far_future", math.MaxInt64, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := s.Verify(signed(tt.ts))
			if tt.valid {
				require.NoError(t, err)
				require.Equal(t, "u1", claims.UserID)
				return
			}
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerify_Malformed(t *testing.T) {
	s := newTestService(t)

	signed := func(payload string) string { return payload + "." + s.sign(payload) }

	inputs := []string{
		"",
		"abc",
		"1.2.3",
		"1.2.3.4",
		"....",
		"......",
		signed("notanumber.00.u1.admin"),
		signed("+-1.00.u1.admin"),
		signed("1e3.00.u1.admin"),
	}

	for _, in := range inputs {
		require.NotPanics(t, func() {
			claims, err := s.Verify(in)
			require.ErrorIs(t, err, ErrInvalidToken, "%q", in)
			require.Nil(t, claims)
		})
	}
}

func TestVerify_SingleSentinel(t *testing.T) {
	s := newTestService(t)

	_, errShape := s.Verify("x")
	_, errSig := s.Verify("1.2.u1.admin.ff")

	frozen(s, time.UnixMilli(0))
	old, err := s.Create("u1", "admin")
	require.NoError(t, err)
	frozen(s, time.UnixMilli(0).Add(6*time.Hour))
	_, errExpired := s.Verify(old)

	for _, e := range []error{errShape, errSig, errExpired} {
		require.True(t, errors.Is(e, ErrInvalidToken))
		require.Equal(t, ErrInvalidToken.Error(), e.Error())
	}
}

func TestCookie_Attributes(t *testing.T) {
	s := newTestService(t)

	c := s.NewCookie("tok", true)
	require.Equal(t, "admin_session", c.Name)
	require.Equal(t, "tok", c.Value)
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Equal(t, 5*60*60, c.MaxAge)

	cleared := ClearCookie(false)
	require.Equal(t, CookieName, cleared.Name)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)
	require.False(t, cleared.Secure)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, TokenFromRequest(req))

	req.AddCookie(&http.Cookie{Name: CookieName, Value: "abc"})
	require.Equal(t, "abc", TokenFromRequest(req))
}

func TestContext_RoundTrip(t *testing.T) {
	require.Nil(t, FromContext(context.Background()))

	c := &Claims{UserID: "u1", Role: "editor"}
	ctx := Into(context.Background(), c)
	require.Equal(t, c, FromContext(ctx))
}
