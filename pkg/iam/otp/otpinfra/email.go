package otpinfra

import (
	"context"
	"fmt"

	"github.com/pressroom-io/pressroom/pkg/iam/otp"
	"github.com/pressroom-io/pressroom/pkg/notifx"
)

const codeTemplateName = "otp_code"

const codeTemplate = `
<html>
  <body style="font-family: sans-serif;">
    <p>Hi {{.Name}},</p>
    <p>Your verification code is:</p>
    <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">{{.Code}}</p>
    <p>The code expires in 10 minutes. If you did not try to sign in, you can ignore this email.</p>
  </body>
</html>`

// EmailNotifier delivers one-time codes through the notification client.
type EmailNotifier struct {
	client *notifx.Client
}

// NewEmailNotifier registers the code template and returns the notifier.
func NewEmailNotifier(client *notifx.Client) (*EmailNotifier, error) {
	if err := client.RegisterTemplate(codeTemplateName, codeTemplate); err != nil {
		return nil, err
	}
	return &EmailNotifier{client: client}, nil
}

var _ otp.Notifier = (*EmailNotifier)(nil)

// SendCode emails the code to its destination.
func (n *EmailNotifier) SendCode(ctx context.Context, destination, displayName, code string) error {
	data := struct {
		Name string
		Code string
	}{Name: displayName, Code: code}

	msg := notifx.EmailMessage{
		To:       []string{destination},
		Subject:  "Your sign-in code",
		TextBody: fmt.Sprintf("Hi %s, your verification code is %s. It expires in 10 minutes.", displayName, code),
	}
	return n.client.SendTemplatedEmail(ctx, codeTemplateName, data, msg)
}
