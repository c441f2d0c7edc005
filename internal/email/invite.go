package email

import "fmt"

type OrgInviteNotificationOpts struct {
	To        User
	Sender    User
	Smtp      SmtpConfig
	OrgName   string
	InviteUrl string
}

// SendOrgInviteNotification delivers an approved organization invite
// with the link the recipient uses to accept it.
func SendOrgInviteNotification(opts OrgInviteNotificationOpts) error {
	body := fmt.Sprintf(
		"Your request to join %s has been approved.\r\n\r\n"+
			"Use the following link to accept the invite:\r\n\r\n%s\r\n",
		opts.OrgName,
		opts.InviteUrl,
	)
	return SendSmtp(SendSmtpOpts{
		To:     []User{opts.To},
		Sender: opts.Sender,
		Smtp:   opts.Smtp,
		Message: Message{
			Title: fmt.Sprintf("Your invite to %s is ready", opts.OrgName),
			Body:  []byte(body),
		},
	})
}
