package managers

import (
	"context"
	"time"

	"github.com/jxiaof/next16-demo/internal/config"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"
)

// MailDispatchTimeout bounds a single Mailgun request.
const MailDispatchTimeout = 5 * time.Second

const (
	passwordResetSubject   = "Reset your password"
	passwordChangedSubject = "Your password was changed"
)

// MailMgr sends the account notification mails.
type MailMgr interface {
	SendPasswordResetMail(email, username, resetURL string) error
	SendPasswordChangedMail(email, username string) error
}

// MailManager renders mails with hermes and dispatches them through Mailgun.
// Outside production mails are only logged.
type MailManager struct {
	Hermes     *hermes.Hermes
	Mailgun    mailgun.Mailgun
	from       string
	production bool
}

// SendPasswordResetMail mails the reset link, which stays valid for one hour.
func (mm *MailManager) SendPasswordResetMail(email, username, resetURL string) error {
	return mm.send(email, passwordResetSubject, passwordResetMail(username, resetURL), log.Fields{"resetUrl": resetURL})
}

// SendPasswordChangedMail notifies the owner that the password was changed.
func (mm *MailManager) SendPasswordChangedMail(email, username string) error {
	return mm.send(email, passwordChangedSubject, passwordChangedMail(username), nil)
}

func passwordResetMail(username, resetURL string) hermes.Email {
	return hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"We received a request to reset the password of your account.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to choose a new password. The link expires in 1 hour.",
					Button: hermes.Button{
						Color: "#2563EB",
						Text:  "Reset password",
						Link:  resetURL,
					},
				},
			},
			Outros: []string{
				"If you did not request a password reset, you can ignore this email. Your password stays unchanged.",
			},
		},
	}
}

// passwordChangedMail is a plain security notice without any link.
func passwordChangedMail(username string) hermes.Email {
	return hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"The password of your account was changed just now.",
				"All other devices have been signed out.",
			},
			Outros: []string{
				"If you did not make this change, reset your password immediately and contact our support team.",
			},
		},
	}
}

func (mm *MailManager) send(email, subject string, mailBody hermes.Email, fields log.Fields) error {
	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	if !mm.production {
		entry := log.WithFields(log.Fields{"to": email, "subject": subject})
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		entry.Info("Mail not dispatched outside production")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), MailDispatchTimeout)
	defer cancel()

	message := mm.Mailgun.NewMessage(mm.from, subject, "", email)
	message.SetHtml(emailBody)
	_, _, err = mm.Mailgun.Send(ctx, message)
	if err != nil {
		log.Warning("Error sending mail '" + subject + "': " + err.Error())
		return err
	}
	log.Debug("Mail '", subject, "' sent to ", email)

	return nil
}

// NewMailManager configures Mailgun and the hermes theme from cfg.
func NewMailManager(cfg *config.Config) MailMgr {
	log.Info("Initializing mail manager")

	if !cfg.IsProduction() {
		log.Info("Running outside production, mails will be logged instead of sent")
	}

	mailgunInstance := mailgun.NewMailgun(cfg.Mail.Domain, cfg.Mail.APIKey)
	if cfg.Mail.EU {
		mailgunInstance.SetAPIBase(mailgun.APIBaseEU)
	}

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        "Next16",
				Link:        cfg.BaseURL + "/",
				Copyright:   "© Next16",
				TroubleText: "If you’re having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		Mailgun:    mailgunInstance,
		from:       cfg.Mail.From,
		production: cfg.IsProduction(),
	}
	log.Info("Initialized mail manager")
	return mm
}
