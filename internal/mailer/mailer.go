package mailer

import (
	"fmt"
	"net/smtp"
	"sync"
)

// Mailer is the outbound-notification collaborator. Callers treat delivery as
// best-effort; a failed Send must never surface to an API client.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTP delivers over a plain SMTP submission endpoint, with STARTTLS and
// authentication when the server offers them.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *SMTP) Send(to, subject, body string) error {
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg))
}

// Message is one captured delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Recorder captures messages instead of delivering them. Err, when set, is
// returned from every Send, for exercising swallowed delivery failures.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (r *Recorder) Send(to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, Message{To: to, Subject: subject, Body: body})
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}
