package mailer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"attackreport/internal/config"
	"attackreport/internal/model"
)

type Mailer struct {
	cfg config.EmailConfig
}

func New(cfg config.EmailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Subject(customer string, weekEnd time.Time) string {
	subject := m.cfg.SubjectTemplate
	subject = strings.ReplaceAll(subject, "{customer}", customer)
	subject = strings.ReplaceAll(subject, "{week_end}", weekEnd.Format("2006-01-02"))
	return subject
}

// SendReport mails the report artifacts as attachments. Any failure here is
// fatal for the run but leaves the already-written artifacts untouched.
func (m *Mailer) SendReport(ctx context.Context, result *model.ReportResult, weekEnd time.Time, attachments []string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(m.cfg.To...); err != nil {
		return fmt.Errorf("to addresses: %w", err)
	}
	msg.Subject(m.Subject(result.Customer, weekEnd))
	msg.SetBodyString(mail.TypeTextPlain, body(result, weekEnd, attachments))
	for _, path := range attachments {
		msg.AttachFile(path)
	}

	opts := []mail.Option{mail.WithPort(m.cfg.SMTPPort)}
	if m.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if m.cfg.UseAuthentication {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	client, err := mail.NewClient(m.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send report mail: %w", err)
	}
	return nil
}

func body(result *model.ReportResult, weekEnd time.Time, attachments []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: Weekly Attack Trends Report\n\n", result.Customer)
	fmt.Fprintf(&b, "Week End Date: %s\n", weekEnd.Format("2006-01-02"))
	fmt.Fprintf(&b, "Weekly Attack Total: %d\n\n", result.Week.Total)
	b.WriteString("Please find attached:\n")
	for _, path := range attachments {
		fmt.Fprintf(&b, "- %s\n", filepath.Base(path))
	}
	if len(result.Top) > 0 {
		b.WriteString("\nTop attack sources this week:\n")
		for _, top := range result.Top {
			fmt.Fprintf(&b, "- %s: %d\n", top.SrcIP, top.Count)
		}
	}
	if len(result.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, warning := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}
	b.WriteString("\nBest regards,\nAutomated Reporting System\n")
	return b.String()
}
