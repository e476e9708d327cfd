// redact маскирует персональные данные и секреты до попадания в логи.
package redact

import "strings"

// Email оставляет первые две руны локальной части и домен.
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}

	runes := []rune(local)
	if len(runes) > 2 {
		return string(runes[:2]) + "***@" + domain
	}

	return "***@" + domain
}

// Token скрывает сессионный токен, но оставляет время выпуска: оно не секретно
// и помогает связать строки лога со входом.
func Token(s string) string {
	ts, _, ok := strings.Cut(s, ".")
	if !ok || ts == "" {
		return "[REDACTED_TOKEN]"
	}

	return ts + ".[REDACTED_TOKEN]"
}
