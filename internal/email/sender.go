package email

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(host string, port int, username, password, from string) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

var verificationTmpl = template.Must(template.New("verification").Parse(`
<p>Hi {{.DisplayName}},</p>
<p>Welcome to Mingle. Your verification code is:</p>
<h2>{{.Code}}</h2>
<p>If you did not create an account, you can ignore this email.</p>
`))

func (s *Sender) SendVerificationEmail(to, displayName, code string) error {
	var body bytes.Buffer
	err := verificationTmpl.Execute(&body, map[string]string{
		"DisplayName": displayName,
		"Code":        code,
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	return s.send(to, "Verify your email address", body.String())
}

func (s *Sender) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return s.dialer.DialAndSend(m)
}
