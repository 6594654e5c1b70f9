// Package mailbox provides disposable email inboxes.
//
// Some releases only hand out their download link by email. A Provider
// creates a throwaway Mailbox whose address is submitted to the platform;
// Messages is then polled until the link arrives.
//
//	box, err := mailbox.NewOneSecMail(client, "").Generate(ctx)
//	fmt.Println(box.Address())
//	msgs, err := box.Messages(ctx, mailbox.FromAddressValidator(sender))
package mailbox

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
)

// Message is a received email.
type Message struct {
	ID       int64
	From     string
	Subject  string
	HTMLBody string
}

// Validator decides whether a message is of interest.
type Validator func(Message) bool

// Mailbox is a disposable inbox.
type Mailbox interface {
	// Address returns the inbox's email address.
	Address() string

	// Messages returns the messages currently in the inbox that pass every
	// validator. It does not block waiting for new mail.
	Messages(ctx context.Context, validators ...Validator) ([]Message, error)
}

// Provider creates mailboxes.
type Provider interface {
	Generate(ctx context.Context) (Mailbox, error)
}

// FromAddressValidator accepts messages whose sender address fully matches pattern.
// Display names ("Name <addr>") are stripped before matching.
func FromAddressValidator(pattern *regexp.Regexp) Validator {
	return func(m Message) bool {
		addr := strings.TrimSpace(m.From)
		if parsed, err := mail.ParseAddress(addr); err == nil {
			addr = parsed.Address
		}
		loc := pattern.FindStringIndex(addr)
		return loc != nil && loc[0] == 0 && loc[1] == len(addr)
	}
}

func accept(m Message, validators []Validator) bool {
	for _, v := range validators {
		if !v(m) {
			return false
		}
	}
	return true
}
