// redact — маскирование чувствительных значений в логах.
//
// В лог никогда не попадают пароли, токены и полные email: сервис хранит
// PII только в БД, логи остаются безопасными для пересылки.
package redact

import "strings"

// Email маскирует локальную часть адреса, домен остаётся читаемым:
// "foobar@example.com" -> "fo***@example.com".
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := parts[0], parts[1]
	if r := []rune(local); len(r) > 2 {
		local = string(r[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }
