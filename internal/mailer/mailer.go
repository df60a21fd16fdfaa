package mailer

import (
	"github.com/sirupsen/logrus" // Logging library
	"gopkg.in/gomail.v2"         // SMTP mail client
)

// Mailer delivers one outbound message. Delivery success or failure is logged
// by callers but never blocks a state transition; the terminal outcome of a
// recommendation is driven by the recipient's own click, not by delivery
// confirmation.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// New returns a Mailer talking to the given SMTP server.
func New(host string, port int, user, pass, from string) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// Send delivers one HTML mail.
func (m *smtpMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)          // Sender address
	msg.SetHeader("To", to)                // Recipient address
	msg.SetHeader("Subject", subject)      // Mail subject
	msg.SetBody("text/html", htmlBody)     // HTML body

	if err := m.dialer.DialAndSend(msg); err != nil {
		// Log the failure with context
		logrus.WithFields(logrus.Fields{
			"to":    to,          // Recipient address
			"error": err.Error(), // Error message
		}).Error("Mail delivery failed") // Log delivery failure
		return err
	}
	logrus.WithField("to", to).Info("Mail delivered") // Log delivery success
	return nil
}
