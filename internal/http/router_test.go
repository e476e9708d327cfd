package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/school-site/internal/config"
	"github.com/pribylovaa/school-site/internal/edge"
	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/service"
	"github.com/pribylovaa/school-site/internal/session"
	"github.com/pribylovaa/school-site/internal/storage"
	"github.com/pribylovaa/school-site/mocks"
)

// Сквозные тесты роутера: настоящие middleware, хендлеры, сервис и сервис сессий;
// хранилище, блобы, счётчики и captcha замоканы через gomock.

const (
	testSecret = "test-secret"
	adminName  = "principal"
	adminPass  = "env-pass-123"
)

type env struct {
	handler  http.Handler
	sessions *session.Service
	db       *mocks.MockDatabase
	blobs    *mocks.MockBlobs
	counters *mocks.MockCounters
	captcha  *mocks.MockVerifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctrl := gomock.NewController(t)

	sessions, err := session.New([]byte(testSecret), 0)
	require.NoError(t, err)

	e := &env{
		sessions: sessions,
		db:       mocks.NewMockDatabase(ctrl),
		blobs:    mocks.NewMockBlobs(ctrl),
		counters: mocks.NewMockCounters(ctrl),
		captcha:  mocks.NewMockVerifier(ctrl),
	}

	cfg := &config.Config{
		Auth: config.AuthConfig{AdminUsername: adminName, AdminPassword: adminPass},
		Upload: config.UploadConfig{
			MaxSizeBytes:        4096,
			AllowedContentTypes: []string{"image/png", "image/jpeg"},
		},
	}

	svc := service.New(service.Deps{
		DB:       e.db,
		Blobs:    e.blobs,
		Counters: e.counters,
		Captcha:  e.captcha,
		Sessions: sessions,
	}, cfg)

	webDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(webDir, "admin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "admin", "app.js"), []byte("console.log(1)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<h1>school</h1>"), 0o644))

	e.handler = NewRouter(svc, sessions, Options{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Timeout:        5 * time.Second,
		Gate:           edge.New(edge.Options{Signer: edge.NewHMACSigner([]byte(testSecret)), Prefixes: []string{"/admin"}}),
		WebDir:         webDir,
		MaxUploadBytes: cfg.Upload.MaxSizeBytes,
	})

	return e
}

func (e *env) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *env) cookie(t *testing.T, userID string, role models.Role) *http.Cookie {
	t.Helper()
	token, err := e.sessions.Create(userID, role.String())
	require.NoError(t, err)
	return e.sessions.NewCookie(token, false)
}

func jsonReq(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func errCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body.Error.Code
}

func TestLogin_SetsCookie_ThenMe(t *testing.T) {
	e := newEnv(t)

	rr := e.do(jsonReq(http.MethodPost, "/api/auth/login", `{"username":"principal","password":"env-pass-123"}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NotContains(t, rr.Body.String(), "token")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	require.Equal(t, session.CookieName, c.Name)
	require.True(t, c.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Equal(t, int((5 * time.Hour).Seconds()), c.MaxAge)

	claims, err := e.sessions.Verify(c.Value)
	require.NoError(t, err)
	require.Equal(t, models.EnvAdminID, claims.UserID)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(c)
	rr = e.do(req)
	require.Equal(t, http.StatusOK, rr.Code)

	var me map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	require.Equal(t, adminName, me["username"])
	require.Equal(t, "admin", me["role"])
	require.Equal(t, true, me["from_config"])
}

func TestLogin_Rejected(t *testing.T) {
	e := newEnv(t)

	e.db.EXPECT().UserByUsername(gomock.Any(), "nobody").Return(nil, storage.ErrNotFound)

	rr := e.do(jsonReq(http.MethodPost, "/api/auth/login", `{"username":"nobody","password":"whatever1"}`))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "unauthenticated", errCode(t, rr))
	require.Empty(t, rr.Result().Cookies())

	rr = e.do(jsonReq(http.MethodPost, "/api/auth/login", `{"username":"x","password":"y","remember":true}`))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	e := newEnv(t)

	rr := e.do(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, session.CookieName, cookies[0].Name)
	require.Less(t, cookies[0].MaxAge, 0)
}

func TestMe_DeletedAccountIsNotFound(t *testing.T) {
	e := newEnv(t)
	id := uuid.New()

	e.db.EXPECT().UserByID(gomock.Any(), id).Return(nil, storage.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(e.cookie(t, id.String(), models.RoleEditor))
	rr := e.do(req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminAPI_RequiresSession(t *testing.T) {
	e := newEnv(t)

	rr := e.do(jsonReq(http.MethodPost, "/api/admin/staff", `{"name":"X"}`))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Empty(t, rr.Header().Get("Location"), "API calls are not redirected")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "forged.token.u1.admin.00"})
	rr = e.do(req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminUsers_EditorForbidden(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(e.cookie(t, uuid.NewString(), models.RoleEditor))
	rr := e.do(req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "permission_denied", errCode(t, rr))
}

func TestAdminUsers_CreateAsAdmin(t *testing.T) {
	e := newEnv(t)

	e.db.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(nil)

	req := jsonReq(http.MethodPost, "/api/admin/users", `{"username":"teacher","password":"password-1","role":"editor"}`)
	req.AddCookie(e.cookie(t, models.EnvAdminID, models.RoleAdmin))
	rr := e.do(req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.NotContains(t, rr.Body.String(), "password")

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, "teacher", out["username"])
	require.Equal(t, "editor", out["role"])
}

func TestEdgeGate_RedirectsDashboardPages(t *testing.T) {
	e := newEnv(t)

	rr := e.do(httptest.NewRequest(http.MethodGet, "/admin/app.js", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	require.Equal(t, "/login?from=%2Fadmin%2Fapp.js", rr.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/admin/app.js", nil)
	req.AddCookie(e.cookie(t, uuid.NewString(), models.RoleEditor))
	rr = e.do(req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "console.log")

	rr = e.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "school")
}

func TestAnnouncements_Public(t *testing.T) {
	e := newEnv(t)
	pub := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	id := uuid.New()

	e.db.EXPECT().ListAnnouncements(gomock.Any(), models.ListOptions{Limit: 5, PageToken: "p1"}).
		Return(&models.AnnouncementPage{
			Items:         []models.Announcement{{ID: id, Title: "Open day", Published: true, PublishedAt: &pub, CreatedAt: pub, UpdatedAt: pub}},
			NextPageToken: "p2",
		}, nil)

	rr := e.do(httptest.NewRequest(http.MethodGet, "/api/announcements?limit=5&page_token=p1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Items []struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			PublishedAt *int64 `json:"published_at"`
		} `json:"items"`
		NextPageToken string `json:"next_page_token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Items, 1)
	require.Equal(t, id.String(), out.Items[0].ID)
	require.Equal(t, pub.Unix(), *out.Items[0].PublishedAt)
	require.Equal(t, "p2", out.NextPageToken)

	rr = e.do(httptest.NewRequest(http.MethodGet, "/api/announcements?limit=abc", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnnouncements_AdminListIncludesDrafts(t *testing.T) {
	e := newEnv(t)

	e.db.EXPECT().ListAnnouncements(gomock.Any(), models.ListOptions{Limit: 10, IncludeDrafts: true}).
		Return(&models.AnnouncementPage{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/announcements", nil)
	req.AddCookie(e.cookie(t, uuid.NewString(), models.RoleEditor))
	rr := e.do(req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"items":[]}`, rr.Body.String())
}

func TestStaff_BadPathID(t *testing.T) {
	e := newEnv(t)

	rr := e.do(httptest.NewRequest(http.MethodGet, "/api/staff/not-a-uuid", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid_argument", errCode(t, rr))
}

func TestStaff_OrgChart(t *testing.T) {
	e := newEnv(t)
	head := models.StaffMember{ID: uuid.New(), Name: "Head"}
	deputy := models.StaffMember{ID: uuid.New(), Name: "Deputy", ReportsTo: &head.ID}

	e.db.EXPECT().ListStaff(gomock.Any()).Return([]models.StaffMember{head, deputy}, nil)

	rr := e.do(httptest.NewRequest(http.MethodGet, "/api/staff/org-chart", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var out []struct {
		Name    string `json:"name"`
		Reports []struct {
			Name string `json:"name"`
		} `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	require.Equal(t, "Head", out[0].Name)
	require.Len(t, out[0].Reports, 1)
	require.Equal(t, "Deputy", out[0].Reports[0].Name)
}

func TestContact_StrictBody(t *testing.T) {
	e := newEnv(t)

	rr := e.do(jsonReq(http.MethodPost, "/api/contact", `{"name":"P","email":"p@example.org","message":"hi","extra":1}`))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(jsonReq(http.MethodPost, "/api/contact", `{"name":"P"} {"name":"Q"}`))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestContact_CaptchaGetsPeerIP(t *testing.T) {
	e := newEnv(t)

	e.captcha.EXPECT().Verify(gomock.Any(), "tok", "192.0.2.1").Return(nil)
	e.db.EXPECT().SaveMessage(gomock.Any(), gomock.Any()).Return(nil)

	rr := e.do(jsonReq(http.MethodPost, "/api/contact",
		`{"name":"Parent","email":"p@example.org","subject":"Hi","message":"Hello","captcha_token":"tok"}`))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestAnalytics_RecordView(t *testing.T) {
	e := newEnv(t)

	e.counters.EXPECT().IncrView(gomock.Any(), "/gallery", gomock.Any()).Return(nil)

	rr := e.do(jsonReq(http.MethodPost, "/api/analytics/view", `{"path":"/gallery?x=1"}`))
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func pngBytes(n int) []byte {
	b := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, n)...)
	return b
}

func multipartReq(t *testing.T, target, title string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	require.NoError(t, mw.WriteField("title", title))
	fw, err := mw.CreateFormFile("file", "photo.bin")
	require.NoError(t, err)
	_, err = fw.Write(file)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestGallery_UploadSniffsContentType(t *testing.T) {
	e := newEnv(t)
	file := pngBytes(100)

	e.blobs.EXPECT().Put(gomock.Any(), "gallery", gomock.Any(), int64(len(file)), "image/png").
		Return(&storage.Object{Key: "gallery/a.png", URL: "http://cdn/gallery/a.png"}, nil)
	e.db.EXPECT().SaveImage(gomock.Any(), gomock.Any()).Return(nil)

	req := multipartReq(t, "/api/admin/gallery", "Sports day", file)
	req.AddCookie(e.cookie(t, uuid.NewString(), models.RoleEditor))
	rr := e.do(req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, "Sports day", out["title"])
	require.Equal(t, "http://cdn/gallery/a.png", out["url"])
}

func TestGallery_UploadRejectsNonImage(t *testing.T) {
	e := newEnv(t)

	req := multipartReq(t, "/api/admin/gallery", "notes", []byte("just some text, not an image"))
	req.AddCookie(e.cookie(t, uuid.NewString(), models.RoleEditor))
	rr := e.do(req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsDisabled_RouterStillServes(t *testing.T) {
	sessions, err := session.New([]byte(testSecret), 0)
	require.NoError(t, err)

	h := NewRouter(service.New(service.Deps{Sessions: sessions}, &config.Config{}), sessions, Options{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
