// session выпускает и проверяет токен админской сессии.
//
// Формат (пять полей через точку, порядок и разделитель входят в контракт):
//
//	<timestampMillis>.<nonceHex>.<userId>.<role>.<signatureHex>
//
// signatureHex это hex в нижнем регистре от HMAC-SHA256(secret, "<timestampMillis>.<nonceHex>.<userId>.<role>").
// Токены без состояния: ничего не хранится, logout только удаляет cookie,
// а сам токен действует до истечения срока.
package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxAge окно свежести токена.
	DefaultMaxAge = 5 * time.Hour

	// ClockSkew насколько время выпуска может опережать текущее.
	ClockSkew = time.Minute

	delimiter  = "."
	fieldCount = 5
	nonceBytes = 16
)

var (
	// ErrInvalidToken единственный исход неудачной проверки: битый, поддельный
	// и просроченный токены для вызывающего неразличимы.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrInvalidField возвращает Create для пустого user id/role или содержащего
	// байт вне [A-Za-z0-9_-].
	ErrInvalidField = errors.New("invalid session field")

	// ErrEmptySecret возвращает New, если ключ подписи не задан.
	ErrEmptySecret = errors.New("empty session secret")
)

// Claims личность, которую несёт валидный токен.
type Claims struct {
	UserID string
	Role   string
}

// Service выпускает и проверяет сессионные токены. Безопасен для конкурентного использования.
type Service struct {
	secret []byte
	maxAge time.Duration

	now  func() time.Time
	rand io.Reader
}

// New создаёт сервис токенов с ключом secret. maxAge <= 0 означает DefaultMaxAge.
func New(secret []byte, maxAge time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &Service{
		secret: key,
		maxAge: maxAge,
		now:    time.Now,
		rand:   rand.Reader,
	}, nil
}

// MaxAge возвращает окно свежести, оно же Max-Age cookie.
func (s *Service) MaxAge() time.Duration { return s.maxAge }

// Create выпускает токен для userID и role. Допустимость роли проверяет вызывающий.
func (s *Service) Create(userID, role string) (string, error) {
	const op = "session.Create"

	if !validField(userID) || !validField(role) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidField)
	}

	nonce := make([]byte, nonceBytes)
	if _, err := io.ReadFull(s.rand, nonce); err != nil {
		return "", fmt.Errorf("%s: nonce: %w", op, err)
	}

	ts := strconv.FormatInt(s.now().UnixMilli(), 10)
	payload := strings.Join([]string{ts, hex.EncodeToString(nonce), userID, role}, delimiter)

	return payload + delimiter + s.sign(payload), nil
}

// Verify проверяет подпись и свежесть и возвращает вложенную личность.
// Любая ошибка даёт (nil, ErrInvalidToken).
func (s *Service) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	parts := strings.Split(token, delimiter)
	if len(parts) != fieldCount {
		return nil, ErrInvalidToken
	}

	payload := strings.Join(parts[:4], delimiter)
	expected := s.sign(payload)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(parts[4])) != 1 {
		return nil, ErrInvalidToken
	}

	issuedAt, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || !fresh(issuedAt, s.now(), s.maxAge) {
		return nil, ErrInvalidToken
	}

	return &Claims{UserID: parts[2], Role: parts[3]}, nil
}

func (s *Service) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))

	return hex.EncodeToString(mac.Sum(nil))
}

// fresh сообщает, действителен ли в момент now токен, выпущенный в issuedMillis.
// Граница maxAge включительная. Отрицательное время выпуска и время, опережающее
// now больше чем на ClockSkew, отклоняются.
func fresh(issuedMillis int64, now time.Time, maxAge time.Duration) bool {
	nowMillis := now.UnixMilli()
	if issuedMillis < 0 || issuedMillis > nowMillis+ClockSkew.Milliseconds() {
		return false
	}

	return nowMillis-issuedMillis <= maxAge.Milliseconds()
}

// validField держит user id и роль внутри допустимых для cookie байтов, с запасом.
func validField(v string) bool {
	if v == "" {
		return false
	}

	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}

	return true
}
