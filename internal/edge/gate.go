// edge охраняет дерево админки до того, как отработает любая страница или API-хендлер.
//
// Гейт проверяет токен admin_session сам: пакет session он не вызывает, а лишь
// совпадает с ним по формату (<ts>.<nonce>.<userId>.<role>.<hex hmac-sha256>)
// и по секрету. Ключевой хеш даёт Signer, его предоставляет окружение размещения.
package edge

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pribylovaa/school-site/internal/metrics"
	"github.com/pribylovaa/school-site/internal/pkg/log"
)

const (
	defaultCookieName = "admin_session"
	defaultLoginPath  = "/login"
	defaultMaxAge     = 5 * time.Hour

	// clockSkew должен совпадать с пакетом session.
	clockSkew = time.Minute

	// ReturnParam query-параметр, по которому страница входа возвращает пользователя.
	ReturnParam = "from"
)

// Decision результат Authenticate.
type Decision struct {
	Allow bool
	// Location задан, когда Allow == false.
	Location string
}

// Options настраивает Gate. Нулевые значения заменяются умолчаниями cookie-контракта.
type Options struct {
	Signer     Signer
	Prefixes   []string // например "/admin"
	LoginPath  string
	CookieName string
	MaxAge     time.Duration
	Metrics    *metrics.Metrics
}

// Gate пропускает запросы к защищённым префиксам только с действующей сессией.
type Gate struct {
	verifier   *verifier
	prefixes   []string
	loginPath  string
	cookieName string
	metrics    *metrics.Metrics
}

// New собирает гейт. Signer обязателен.
func New(opts Options) *Gate {
	if opts.Signer == nil {
		panic("edge: nil signer")
	}

	g := &Gate{
		prefixes:   normalizePrefixes(opts.Prefixes),
		loginPath:  opts.LoginPath,
		cookieName: opts.CookieName,
		metrics:    opts.Metrics,
	}

	if g.loginPath == "" {
		g.loginPath = defaultLoginPath
	}

	if g.cookieName == "" {
		g.cookieName = defaultCookieName
	}

	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}

	g.verifier = &verifier{signer: opts.Signer, maxAge: maxAge, now: time.Now}

	return g
}

// Matches сообщает, лежит ли path под одним из защищённых префиксов.
func (g *Gate) Matches(path string) bool {
	for _, p := range g.prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}

	return false
}

// Authenticate решает судьбу одного запроса. Matches не проверяет.
func (g *Gate) Authenticate(r *http.Request) Decision {
	c, err := r.Cookie(g.cookieName)
	if err != nil || c.Value == "" {
		return Decision{Location: g.loginURL(r.URL.Path)}
	}

	if !g.verifier.verify(r.Context(), c.Value) {
		return Decision{Location: g.loginURL(r.URL.Path)}
	}

	return Decision{Allow: true}
}

// Middleware применяет гейт к совпавшим путям, остальное проходит без изменений.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Matches(r.URL.Path) {
			g.metrics.GateDecision(metrics.GateBypass)
			next.ServeHTTP(w, r)
			return
		}

		d := g.Authenticate(r)
		if d.Allow {
			g.metrics.GateDecision(metrics.GateAllow)
			next.ServeHTTP(w, r)
			return
		}

		g.metrics.GateDecision(metrics.GateRedirect)
		log.From(r.Context()).LogAttrs(r.Context(), slog.LevelInfo, "edge_redirect",
			slog.String("path", r.URL.Path),
		)

		http.Redirect(w, r, d.Location, http.StatusTemporaryRedirect)
	})
}

func (g *Gate) loginURL(from string) string {
	q := url.Values{}
	q.Set(ReturnParam, from)

	return g.loginPath + "?" + q.Encode()
}

func normalizePrefixes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, p)
	}

	return out
}
