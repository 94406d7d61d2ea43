package core

import "net/mail"

type (
	// EmailMessage is a plain-text email to be sent out-of-band.
	EmailMessage struct {
		To          []mail.Address
		Subject     string
		TextContent string
	}

	EmailService interface {
		SendMessages(messages ...*EmailMessage)
	}
)

func (msg EmailMessage) HasRecipients() bool { return len(msg.To) > 0 }

func (msg EmailMessage) HasContent() bool { return msg.TextContent != "" }
