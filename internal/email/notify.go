package email

import "fmt"

type MfaAddedNotificationOpts struct {
	To            User
	Sender        User
	Smtp          SmtpConfig
	InterfaceName string
	DeviceName    string
}

// SendMfaAddedNotification tells the account owner a new second factor
// was registered, so an unexpected enrollment can be caught early.
func SendMfaAddedNotification(opts MfaAddedNotificationOpts) error {
	body := fmt.Sprintf(
		"A new two-factor authentication method (%s) was added to your account.\r\n\r\n"+
			"If this was you, no action is needed. If you do not recognize this change, "+
			"reset your password and review your account's authenticators immediately.\r\n",
		opts.InterfaceName,
	)
	if opts.DeviceName != "" {
		body = fmt.Sprintf(
			"A new two-factor authentication method (%s, %q) was added to your account.\r\n\r\n"+
				"If this was you, no action is needed. If you do not recognize this change, "+
				"reset your password and review your account's authenticators immediately.\r\n",
			opts.InterfaceName,
			opts.DeviceName,
		)
	}
	return SendSmtp(SendSmtpOpts{
		To:     []User{opts.To},
		Sender: opts.Sender,
		Smtp:   opts.Smtp,
		Message: Message{
			Title: "A new two-factor method was added to your account",
			Body:  []byte(body),
		},
	})
}
