package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"robolab-portal/config"
	"robolab-portal/internal/model"
	"robolab-portal/pkg/mailer"
)

// Notifier sends the confirmation emails for a new registration.
type Notifier struct {
	sender      mailer.Sender
	programName string
	admin       mail.Address
	timeout     time.Duration
	logger      *zap.Logger
}

// NewNotifier creates a Notifier. A nil sender disables email.
func NewNotifier(sender mailer.Sender, cfg *config.Config, logger *zap.Logger) *Notifier {
	timeout := cfg.Mail.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		sender:      sender,
		programName: cfg.Program.Name,
		admin:       mail.Address{Name: cfg.Program.Name + " Admin", Address: cfg.Mail.AdminAddress},
		timeout:     timeout,
		logger:      logger,
	}
}

// RegistrationReceived mails the parent and the administrator. Delivery
// failures are logged and returned as warnings; they never fail the caller.
func (n *Notifier) RegistrationReceived(ctx context.Context, reg *model.Registration) []string {
	if n == nil || n.sender == nil {
		return nil
	}

	summary := registrationSummary(reg)
	messages := []struct {
		kind string
		msg  *mailer.Message
	}{
		{"parent", &mailer.Message{
			To:      []mail.Address{{Name: reg.ParentName, Address: reg.ParentEmail}},
			Subject: fmt.Sprintf("%s registration received (%s)", n.programName, reg.ID),
			Text: fmt.Sprintf("Hi %s,\n\nThank you for registering %s with %s. "+
				"Keep this registration ID for your records: %s\n\n%s\nWe will be in touch with schedule details soon.\n",
				reg.ParentName, reg.ChildName, n.programName, reg.ID, summary),
		}},
		{"admin", &mailer.Message{
			To:      []mail.Address{n.admin},
			Subject: fmt.Sprintf("New registration: %s (%s)", reg.ChildName, reg.ID),
			Text:    fmt.Sprintf("A new registration was submitted.\n\n%s", summary),
		}},
	}

	var warnings []string
	for _, m := range messages {
		sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
		err := n.sender.Send(sendCtx, m.msg)
		cancel()
		if err != nil {
			n.logger.Warn("registration email failed",
				zap.String("id", reg.ID),
				zap.String("recipient", m.kind),
				zap.Error(err),
			)
			warnings = append(warnings, fmt.Sprintf("%s confirmation email could not be sent", m.kind))
		}
	}
	return warnings
}

func registrationSummary(reg *model.Registration) string {
	var b strings.Builder
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "  %-20s %s\n", label+":", value)
		}
	}
	b.WriteString("Registration summary\n")
	line("Registration ID", reg.ID)
	line("Submitted", reg.SubmittedAt.Format(time.RFC1123))
	line("Child", reg.ChildName)
	line("Age", reg.ChildAge)
	line("Grade", reg.ChildGrade)
	line("School", reg.ChildSchool)
	line("Parent", reg.ParentName)
	line("Email", reg.ParentEmail)
	line("Phone", reg.ParentPhone)
	line("Emergency contact", reg.EmergencyContactName+" "+reg.EmergencyContactPhone)
	line("Preferred timing", reg.PreferredTiming)
	line("Alternate timing", reg.AlternateTiming)
	line("Interest level", reg.InterestLevel)
	values := reg.ColumnValues()
	line("Prior experience", values["has_experience"])
	line("Photo consent", values["photo_consent"])
	line("T-shirt size", reg.TShirtSize)
	line("Volunteer interest", values["volunteer_interest"])
	return b.String()
}
