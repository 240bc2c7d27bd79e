// Package sms provides text message delivery behind a small interface.
package sms

import (
	"context"
	"io"
)

// Message represents an SMS payload.
type Message struct {
	// To is the destination phone number.
	To string
	// Text is the message body.
	Text string
}

// SMS abstracts an SMS provider.
type SMS interface {
	io.Closer
	// Send dispatches the given message and returns the provider message ID.
	Send(ctx context.Context, msg Message) (string, error)
}
