package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("MailService disabled: missing SMTP environment variables")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
	}
}

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(`
<p>Hi {{.Username}},</p>
<p>Your Inkwell account is ready. Log in, write something, and let readers clap for it.</p>
<p>— Inkwell</p>`))

	magicLinkTmpl = template.Must(template.New("magic").Parse(`
<p>Hi {{.Username}},</p>
<p>Click the link below to sign in to Inkwell. It works once and expires in {{.TTL}} minutes.</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not request this, you can ignore this email.</p>
<p>— Inkwell</p>`))

	commentTmpl = template.Must(template.New("comment").Parse(`
<p>Hi {{.Recipient}},</p>
<p><b>{{.Actor}}</b> {{.What}} on <i>{{.PostTitle}}</i>:</p>
<blockquote>{{.Content}}</blockquote>
<p><a href="{{.Link}}">Read and reply</a></p>
<p>— Inkwell</p>`))
)

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Inkwell <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))

		if err := smtp.SendMail(addr, auth, s.From, to, msg); err != nil {
			log.Printf("Failed to send email to %v: %v", to, err)
		} else {
			log.Printf("Email sent to %v: %s", to, subject)
		}
	}()
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func (s *MailService) SendWelcomeEmail(email, username string) {
	body, err := render(welcomeTmpl, map[string]string{"Username": username})
	if err != nil {
		log.Printf("Error rendering welcome email: %v", err)
		return
	}
	s.sendAsync([]string{email}, "Welcome to Inkwell", body)
}

func (s *MailService) SendMagicLinkEmail(email, username, link string) {
	body, err := render(magicLinkTmpl, map[string]interface{}{
		"Username": username,
		"Link":     link,
		"TTL":      int(MagicLinkTTL.Minutes()),
	})
	if err != nil {
		log.Printf("Error rendering magic link email: %v", err)
		return
	}
	s.sendAsync([]string{email}, "Your Inkwell sign-in link", body)
}

func (s *MailService) SendCommentNotification(email, recipient, actor, what, postTitle, content, link string) {
	body, err := render(commentTmpl, map[string]string{
		"Recipient": recipient,
		"Actor":     actor,
		"What":      what,
		"PostTitle": postTitle,
		"Content":   content,
		"Link":      link,
	})
	if err != nil {
		log.Printf("Error rendering comment email: %v", err)
		return
	}
	s.sendAsync([]string{email}, fmt.Sprintf("%s %s on %q", actor, what, postTitle), body)
}
