package notify

import "fmt"

// EmailKind is the closed set of transactional mails the system sends.
type EmailKind string

const (
	EmailOTP               EmailKind = "otp"
	EmailProviderApproval  EmailKind = "provider-approval"
	EmailProviderRejection EmailKind = "provider-rejection"
	EmailServiceApproval   EmailKind = "service-approval"
	EmailServiceRejection  EmailKind = "service-rejection"
	EmailBookingApproved   EmailKind = "booking-approved"
	EmailBookingRejected   EmailKind = "booking-rejected"
	EmailBookingScheduled  EmailKind = "booking-scheduled"
	EmailBookingInProgress EmailKind = "booking-in-progress"
	EmailBookingCompleted  EmailKind = "booking-completed"
	EmailPasswordReset     EmailKind = "password-reset"
	EmailContactForm       EmailKind = "contact-form"
)

// EmailPayload carries every field any template can reference; each kind
// reads only the fields it needs.
type EmailPayload struct {
	Email       string // recipient
	Name        string
	ServiceName string
	Notes       string
	Date        string
	Time        string
	BookingID   string
	OTP         string
	ResetURL    string

	// contact form
	FromEmail string
	Subject   string
	Message   string
}

// ComposeEmail renders subject and body for a kind. Unknown kinds are a
// programming error and fail the job immediately.
func ComposeEmail(kind EmailKind, p EmailPayload) (subject, body string, err error) {
	switch kind {
	case EmailOTP:
		return "Your verification code",
			fmt.Sprintf("Your OTP is: %s. It will expire in 10 minutes.", p.OTP), nil

	case EmailPasswordReset:
		return "Password Reset Request",
			fmt.Sprintf("You requested a password reset. Click the link to reset your password: %s. This link will expire in 1 hour.", p.ResetURL), nil

	case EmailProviderApproval:
		return "Provider Account Approved",
			fmt.Sprintf("Dear %s,\n\nCongratulations! Your provider account has been approved. You can now log in and start adding services to your dashboard.%s\n\nBest regards,\nThe Local Services Team",
				p.Name, notesBlock(p.Notes)), nil

	case EmailProviderRejection:
		return "Provider Account Application Update",
			fmt.Sprintf("Dear %s,\n\nWe regret to inform you that your provider account application has been rejected.%s\n\nIf you have any questions, please contact our support team.\n\nBest regards,\nThe Local Services Team",
				p.Name, notesBlock(p.Notes)), nil

	case EmailServiceApproval:
		return "Service Approved",
			fmt.Sprintf("Dear %s,\n\nYour service \"%s\" has been approved and is now visible to customers.%s\n\nBest regards,\nThe Local Services Team",
				p.Name, p.ServiceName, notesBlock(p.Notes)), nil

	case EmailServiceRejection:
		return "Service Application Update",
			fmt.Sprintf("Dear %s,\n\nYour service \"%s\" was not approved.%s\n\nBest regards,\nThe Local Services Team",
				p.Name, p.ServiceName, notesBlock(p.Notes)), nil

	case EmailBookingApproved:
		return "Booking Approved",
			fmt.Sprintf("Dear %s,\n\nYour booking for \"%s\" has been approved.%s\n\nBest regards,\nThe Local Services Team",
				p.Name, p.ServiceName, notesBlock(p.Notes)), nil

	case EmailBookingRejected:
		return "Booking Update",
			fmt.Sprintf("Dear %s,\n\nUnfortunately your booking for \"%s\" has been rejected.%s\n\nBest regards,\nThe Local Services Team",
				p.Name, p.ServiceName, notesBlock(p.Notes)), nil

	case EmailBookingScheduled:
		return "Booking Scheduled",
			fmt.Sprintf("Dear %s,\n\nYour booking for \"%s\" has been scheduled on %s at %s.\n\nBest regards,\nThe Local Services Team",
				p.Name, p.ServiceName, p.Date, p.Time), nil

	case EmailBookingInProgress:
		return "Service In Progress",
			fmt.Sprintf("Dear %s,\n\nWork on your booking for \"%s\" is now in progress.\n\nBest regards,\nThe Local Services Team",
				p.Name, p.ServiceName), nil

	case EmailBookingCompleted:
		return "Service Completed",
			fmt.Sprintf("Dear %s,\n\nYour booking for \"%s\" has been completed (ref: %s). We would love to hear your feedback!\n\nBest regards,\nThe Local Services Team",
				p.Name, p.ServiceName, p.BookingID), nil

	case EmailContactForm:
		return fmt.Sprintf("Contact form: %s", p.Subject),
			fmt.Sprintf("From: %s <%s>\n\n%s", p.Name, p.FromEmail, p.Message), nil

	default:
		return "", "", fmt.Errorf("unknown email kind: %s", kind)
	}
}

func notesBlock(notes string) string {
	if notes == "" {
		return ""
	}
	return fmt.Sprintf("\n\nAdmin Notes: %s", notes)
}
