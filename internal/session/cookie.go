package session

import (
	"net/http"
)

// CookieName имя cookie, в которой токен ходит между браузером, edge-гейтом и API.
const CookieName = "admin_session"

// NewCookie собирает сессионную cookie для token. Max-Age совпадает с окном
// свежести токена, поэтому истекают они одновременно.
func (s *Service) NewCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie возвращает cookie, по которой браузер удаляет сессию.
func ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromRequest возвращает сырое значение сессионной cookie или "".
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}

	return c.Value
}
