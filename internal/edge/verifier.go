package edge

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Signer вычисляет ключевой хеш data. Реализации могут блокироваться,
// поэтому вызов принимает контекст.
type Signer interface {
	Sign(ctx context.Context, data []byte) ([]byte, error)
}

type hmacSigner struct {
	key []byte
}

// NewHMACSigner возвращает HMAC-SHA256 Signer для key.
func NewHMACSigner(key []byte) Signer {
	k := make([]byte, len(key))
	copy(k, key)

	return &hmacSigner{key: k}
}

func (s *hmacSigner) Sign(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(data)

	return mac.Sum(nil), nil
}

type verifier struct {
	signer Signer
	maxAge time.Duration
	now    func() time.Time
}

// verify сообщает, подлинный ли токен и свеж ли он.
func (v *verifier) verify(ctx context.Context, token string) bool {
	fields, ok := scan(token)
	if !ok {
		return false
	}

	sig, ok := decodeLowerHex(fields[4])
	if !ok || len(sig) != sha256.Size {
		return false
	}

	// Подписано всё до последнего разделителя.
	signed := token[:len(token)-len(fields[4])-1]

	expected, err := v.signer.Sign(ctx, []byte(signed))
	if err != nil {
		return false
	}

	if !hmac.Equal(expected, sig) {
		return false
	}

	issued, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return false
	}

	now := v.now().UnixMilli()
	if issued < 0 || issued > now+clockSkew.Milliseconds() {
		return false
	}

	return now-issued <= v.maxAge.Milliseconds()
}

// scan делит token ровно на пять полей через '.'.
func scan(token string) ([5]string, bool) {
	var out [5]string

	rest := token
	for i := 0; i < 4; i++ {
		field, tail, found := strings.Cut(rest, ".")
		if !found {
			return out, false
		}
		out[i] = field
		rest = tail
	}

	if strings.Contains(rest, ".") {
		return out, false
	}
	out[4] = rest

	return out, token != ""
}

// decodeLowerHex отклоняет верхний регистр: эмитент пишет только нижний
// и сравнивает текстовую форму.
func decodeLowerHex(s string) ([]byte, bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return nil, false
		}
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, false
	}

	return b, true
}
