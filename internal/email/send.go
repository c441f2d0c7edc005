package email

import (
	"bytes"
	"errors"
	"fmt"
	"mime/quotedprintable"
	"net/smtp"
	"strings"
	"vigil/internal/common"
)

type User struct {
	Address string
	Name    string
}

type Message struct {
	Title string
	Body  []byte
}

type SmtpConfig struct {
	Hostname string
	Port     int
	Username string
	Password string
}

type SendSmtpOpts struct {
	To     []User
	Sender User

	Smtp        SmtpConfig
	Message     Message
	ServiceLogs chan<- common.ServiceLog
}

func (o SendSmtpOpts) Validate() error {
	errs := []error{}

	if o.To == nil {
		errs = append(errs, fmt.Errorf("missing receivers"))
	} else {
		for receiverIndex, receiver := range o.To {
			if receiver.Address == "" {
				errs = append(errs, fmt.Errorf("missing receiver address for receiver[%v]", receiverIndex))
			}
		}
	}
	if o.Sender.Address == "" {
		errs = append(errs, fmt.Errorf("missing sender address"))
	}
	if o.Message.Title == "" {
		errs = append(errs, fmt.Errorf("missing message title"))
	}
	if o.Message.Body == nil || string(o.Message.Body) == "" {
		errs = append(errs, fmt.Errorf("missing message body"))
	}
	if o.Smtp.Hostname == "" {
		errs = append(errs, fmt.Errorf("missing smtp hostname"))
	}
	if o.Smtp.Port == 0 {
		errs = append(errs, fmt.Errorf("missing smtp port"))
	}
	if o.Smtp.Username == "" {
		errs = append(errs, fmt.Errorf("missing smtp username"))
	}
	if o.Smtp.Password == "" {
		errs = append(errs, fmt.Errorf("missing smtp password"))
	}

	if len(errs) > 0 {
		errs = append([]error{fmt.Errorf("SendSmtpOpts validation failed")}, errs...)
		return errors.Join(errs...)
	}
	return nil
}

func SendSmtp(opts SendSmtpOpts) error {
	serviceLogs := opts.ServiceLogs
	if serviceLogs == nil {
		serviceLogs = common.GetNoopServiceLog()
	}

	if err := opts.Validate(); err != nil {
		return fmt.Errorf("failed to validate input to SendSmtp: %s", err)
	}

	from := opts.Sender.Address
	if opts.Sender.Name != "" {
		from = fmt.Sprintf("%s <%s>", opts.Sender.Name, from)
	}
	toAddresses := []string{}
	toHeader := []string{}
	for _, receiver := range opts.To {
		toAddresses = append(toAddresses, receiver.Address)
		display := receiver.Address
		if receiver.Name != "" {
			display = fmt.Sprintf("%s <%s>", receiver.Name, receiver.Address)
		}
		toHeader = append(toHeader, display)
	}

	var body bytes.Buffer
	encoder := quotedprintable.NewWriter(&body)
	if _, err := encoder.Write(opts.Message.Body); err != nil {
		return fmt.Errorf("failed to encode message body: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize message body: %w", err)
	}

	var message bytes.Buffer
	fmt.Fprintf(&message, "From: %s\r\n", from)
	fmt.Fprintf(&message, "To: %s\r\n", strings.Join(toHeader, ", "))
	fmt.Fprintf(&message, "Subject: %s\r\n", opts.Message.Title)
	fmt.Fprintf(&message, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&message, "Content-Type: text/plain; charset=\"utf-8\"\r\n")
	fmt.Fprintf(&message, "Content-Transfer-Encoding: quoted-printable\r\n")
	fmt.Fprintf(&message, "\r\n")
	message.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%v", opts.Smtp.Hostname, opts.Smtp.Port)
	serviceLogs <- common.ServiceLogf(common.LogLevelDebug, "sending email[%s] via smtp host[%s]", opts.Message.Title, addr)
	smtpAuth := smtp.PlainAuth("", opts.Smtp.Username, opts.Smtp.Password, opts.Smtp.Hostname)
	if err := smtp.SendMail(addr, smtpAuth, opts.Sender.Address, toAddresses, message.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
