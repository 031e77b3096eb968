package mailer

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail/v2"
)

// Mailer отправляет почтовые уведомления через SMTP.
// Вызывающая сторона сама решает, как реагировать на ошибку отправки:
// сервис статусов логирует её и не откатывает основную операцию.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// New создаёт почтовый сервис. Пустой host означает, что отправка
// отключена и Send будет возвращать ошибку конфигурации.
func New(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from}
}

// Enabled сообщает, настроен ли SMTP.
func (m *Mailer) Enabled() bool {
	return m.host != "" && m.from != ""
}

// Send отправляет письмо одному получателю.
func (m *Mailer) Send(to, subject, html string) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer: SMTP не сконфигурирован (SMTP_HOST/SMTP_FROM)")
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	d := mail.NewDialer(m.host, m.port, m.user, m.pass)

	// Принудительный STARTTLS на 587 порту (Gmail/Office365).
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{ServerName: m.host}

	return d.DialAndSend(msg)
}
