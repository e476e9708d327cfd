package service

// Тесты сервисного слоя. Хранилище, блобы, счётчики и captcha это gomock-моки из /mocks;
// сервис сессий настоящий, с фиксированным секретом.
//
//   go test ./internal/service -v -race -count=1

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/school-site/internal/captcha"
	"github.com/pribylovaa/school-site/internal/config"
	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/session"
	"github.com/pribylovaa/school-site/internal/storage"
	"github.com/pribylovaa/school-site/mocks"
)

const (
	envAdminName = "principal"
	envAdminPass = "env-pass-123"
)

var fixedNow = time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

var (
	_ storage.Database = (*mocks.MockDatabase)(nil)
	_ storage.Staff    = (*mocks.MockStaff)(nil)
	_ storage.Blobs    = (*mocks.MockBlobs)(nil)
	_ storage.Counters = (*mocks.MockCounters)(nil)
	_ captcha.Verifier = (*mocks.MockVerifier)(nil)
)

type fixture struct {
	svc      *Service
	db       *mocks.MockDatabase
	blobs    *mocks.MockBlobs
	counters *mocks.MockCounters
	captcha  *mocks.MockVerifier
	sessions *session.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	sessions, err := session.New([]byte("test-secret"), 0)
	require.NoError(t, err)

	f := &fixture{
		db:       mocks.NewMockDatabase(ctrl),
		blobs:    mocks.NewMockBlobs(ctrl),
		counters: mocks.NewMockCounters(ctrl),
		captcha:  mocks.NewMockVerifier(ctrl),
		sessions: sessions,
	}

	cfg := &config.Config{
		Auth: config.AuthConfig{AdminUsername: envAdminName, AdminPassword: envAdminPass},
		Upload: config.UploadConfig{
			MaxSizeBytes:        1024,
			AllowedContentTypes: []string{"image/png", "image/jpeg"},
		},
	}

	f.svc = New(Deps{
		DB:       f.db,
		Blobs:    f.blobs,
		Counters: f.counters,
		Captcha:  f.captcha,
		Sessions: sessions,
	}, cfg)
	f.svc.now = func() time.Time { return fixedNow }

	return f
}

func mustHash(t *testing.T, pw string) []byte {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func adminClaims(id string) *session.Claims {
	return &session.Claims{UserID: id, Role: string(models.RoleAdmin)}
}

func editorClaims(id string) *session.Claims {
	return &session.Claims{UserID: id, Role: string(models.RoleEditor)}
}

func TestFromStorage_Mapping(t *testing.T) {
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := []struct {
		in   error
		want error
	}{
		{storage.ErrNotFound, ErrNotFound},
		{storage.ErrAlreadyExists, ErrAlreadyExists},
		{storage.ErrInvalidArgument, ErrInvalidArgument},
		{storage.ErrInvalidCursor, ErrInvalidArgument},
		{context.DeadlineExceeded, context.DeadlineExceeded},
		{errors.New("pg down"), ErrInternal},
	}

	for _, c := range cases {
		require.ErrorIs(t, fromStorage(lg, "op", c.in), c.want)
	}
}

func TestClampLimit(t *testing.T) {
	require.Equal(t, int32(defaultPageLimit), clampLimit(0))
	require.Equal(t, int32(defaultPageLimit), clampLimit(-3))
	require.Equal(t, int32(7), clampLimit(7))
	require.Equal(t, int32(maxPageLimit), clampLimit(500))
}
