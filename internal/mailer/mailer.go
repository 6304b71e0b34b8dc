// mailer — коллаборатор отправки писем подтверждения email.
//
// Сервис вызывает его в режиме fire-and-forget: сбой отправки логируется
// вызывающей стороной и не влияет на исход регистрации.
package mailer

import "context"

// Mailer отправляет письмо со ссылкой подтверждения email.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, link string) error
}

// Noop — заглушка для окружений без SMTP (локальная разработка, тесты).
type Noop struct{}

func (Noop) SendVerificationEmail(context.Context, string, string) error { return nil }
