package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sc619/authd/internal/pkg/instrument"
	"github.com/sc619/authd/internal/pkg/mail"
	"github.com/sc619/authd/internal/pkg/sms"
)

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) Close() error { return nil }

type fakeTexter struct {
	sent  []sms.Message
	calls int
	err   error
}

func (f *fakeTexter) Send(_ context.Context, msg sms.Message) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "msg-1", nil
}

func (f *fakeTexter) Close() error { return nil }

func newGateway(mailer *fakeMailer, texter *fakeTexter) *Gateway {
	return New(mailer, texter, "no-reply@example.com", instrument.NewNoop())
}

func TestSend(t *testing.T) {

	t.Run("MixedDestinationsRefused", func(t *testing.T) {
		// Arrange
		mailer := &fakeMailer{}
		texter := &fakeTexter{}
		g := newGateway(mailer, texter)

		// Act
		report, err := g.Send(context.Background(), "body", "subject",
			[]string{"user@example.com", "+15550001111"}, nil)

		// Assert
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		if report.Success {
			t.Fatalf("mixed batch must not succeed")
		}
		if !strings.Contains(report.Message, "all be email addresses or all phone numbers") {
			t.Fatalf("unexpected message %q", report.Message)
		}
		if len(mailer.sent) != 0 || texter.calls != 0 {
			t.Fatalf("nothing may be dispatched for a mixed batch")
		}
	})

	t.Run("EmailDelivery", func(t *testing.T) {
		// Arrange
		mailer := &fakeMailer{}
		g := newGateway(mailer, &fakeTexter{})

		// Act
		report, err := g.Send(context.Background(), "body", "subject",
			[]string{"a@example.com", "b@example.com"}, nil)

		// Assert
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		if !report.Success {
			t.Fatalf("expected success, got %q", report.Message)
		}
		if len(mailer.sent) != 1 || len(mailer.sent[0].To) != 2 {
			t.Fatalf("expected one message to both recipients, got %+v", mailer.sent)
		}
		if mailer.sent[0].From != "no-reply@example.com" {
			t.Fatalf("unexpected sender %q", mailer.sent[0].From)
		}
	})

	t.Run("EmailFailureReported", func(t *testing.T) {
		// Arrange
		mailer := &fakeMailer{err: errors.New("smtp down")}
		g := newGateway(mailer, &fakeTexter{})

		// Act
		report, err := g.Send(context.Background(), "body", "subject",
			[]string{"a@example.com"}, nil)

		// Assert
		if err != nil {
			t.Fatalf("provider failure must not surface as transport error: %v", err)
		}
		if report.Success {
			t.Fatalf("expected failure report")
		}
		if !strings.Contains(report.Message, "email address") {
			t.Fatalf("unexpected message %q", report.Message)
		}
	})

	t.Run("SMSDelivery", func(t *testing.T) {
		// Arrange
		texter := &fakeTexter{}
		g := newGateway(&fakeMailer{}, texter)

		// Act
		report, err := g.Send(context.Background(), "body", "subject",
			[]string{"+15550001111"}, nil)

		// Assert
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		if !report.Success {
			t.Fatalf("expected success, got %q", report.Message)
		}
		if len(texter.sent) != 1 || texter.sent[0].To != "+15550001111" {
			t.Fatalf("unexpected dispatches %+v", texter.sent)
		}
	})

	t.Run("SMSFailureRetriesThenReports", func(t *testing.T) {
		// Arrange
		texter := &fakeTexter{err: errors.New("gateway timeout")}
		g := newGateway(&fakeMailer{}, texter)

		// Act
		report, err := g.Send(context.Background(), "body", "subject",
			[]string{"+15550001111"}, nil)

		// Assert
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		if report.Success {
			t.Fatalf("expected failure report")
		}
		if texter.calls != 3 {
			t.Fatalf("expected initial attempt plus two retries, got %d", texter.calls)
		}
		if !strings.Contains(report.Message, "phone number") {
			t.Fatalf("unexpected message %q", report.Message)
		}
	})

	t.Run("SMSFailureFallsBackToEmail", func(t *testing.T) {
		// Arrange
		mailer := &fakeMailer{}
		texter := &fakeTexter{err: errors.New("gateway timeout")}
		g := newGateway(mailer, texter)

		// Act
		report, err := g.Send(context.Background(), "body", "subject",
			[]string{"+15550001111"}, []string{"user@example.com"})

		// Assert
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		if !report.Success {
			t.Fatalf("fallback delivery must succeed, got %q", report.Message)
		}
		if !strings.Contains(report.Message, "email address instead") {
			t.Fatalf("unexpected message %q", report.Message)
		}
		if len(mailer.sent) != 1 || mailer.sent[0].To[0] != "user@example.com" {
			t.Fatalf("unexpected fallback dispatch %+v", mailer.sent)
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		// Arrange
		texter := &fakeTexter{err: errors.New("gateway timeout")}
		g := newGateway(&fakeMailer{}, texter)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Act
		_, err := g.Send(ctx, "body", "subject", []string{"+15550001111"}, nil)

		// Assert
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context cancellation, got %v", err)
		}
	})
}
