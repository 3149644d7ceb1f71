package email

import (
	"bytes"
	"fmt"
	"html/template"
)

var confirmationTmpl = template.Must(template.New("confirm").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Welcome, {{.Name}}!</h2>
  <p>Thanks for signing up. Please confirm your email address to start shopping.</p>
  <p><a href="{{.Link}}" style="background:#1976d2;color:#fff;padding:10px 18px;text-decoration:none;border-radius:4px;">Confirm email</a></p>
  <p>Or open this link: {{.Link}}</p>
  <p>The link expires in 24 hours.</p>
</body>
</html>`))

var resetTmpl = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Hello, {{.Name}}</h2>
  <p>We received a request to reset your password.</p>
  <p><a href="{{.Link}}" style="background:#1976d2;color:#fff;padding:10px 18px;text-decoration:none;border-radius:4px;">Reset password</a></p>
  <p>Or open this link: {{.Link}}</p>
  <p>The link expires in 1 hour. If you did not ask for this, ignore this email.</p>
</body>
</html>`))

type linkData struct {
	Name string
	Link string
}

func render(t *template.Template, name, link string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, linkData{Name: name, Link: link}); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func ConfirmationMessage(to, name, link string) (*Message, error) {
	html, err := render(confirmationTmpl, name, link)
	if err != nil {
		return nil, err
	}
	return &Message{
		To:       to,
		Subject:  "Confirm your email",
		HTMLBody: html,
		TextBody: fmt.Sprintf("Welcome, %s!\n\nConfirm your email: %s\n\nThe link expires in 24 hours.", name, link),
	}, nil
}

func PasswordResetMessage(to, name, link string) (*Message, error) {
	html, err := render(resetTmpl, name, link)
	if err != nil {
		return nil, err
	}
	return &Message{
		To:       to,
		Subject:  "Reset your password",
		HTMLBody: html,
		TextBody: fmt.Sprintf("Hello, %s\n\nReset your password: %s\n\nThe link expires in 1 hour.", name, link),
	}, nil
}
