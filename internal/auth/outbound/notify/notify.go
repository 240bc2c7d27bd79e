// Package notify delivers one-time passcodes over email and SMS. Destinations
// of one call must be homogeneous: all email addresses or all phone numbers.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/instrument"
	"github.com/sc619/authd/internal/pkg/mail"
	"github.com/sc619/authd/internal/pkg/sms"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	smsRetryBackoff  = 200 * time.Millisecond
	smsRetryAttempts = 2
)

type Gateway struct {
	mailer mail.Mail
	texter sms.SMS
	from   string
	ins    instrument.Instrumentation
}

func New(mailer mail.Mail, texter sms.SMS, from string, ins instrument.Instrumentation) *Gateway {
	return &Gateway{mailer: mailer, texter: texter, from: from, ins: ins}
}

// Send dispatches message to every destination over the channel the
// destinations belong to. A failed SMS dispatch falls back to the given email
// addresses when any are provided. The returned report carries a
// human-readable outcome; the error return is reserved for context
// cancellation and transport setup failures.
func (g *Gateway) Send(ctx context.Context, message, subject string, destinations, fallback []string) (report entity.DeliveryReport, err error) {
	ctx, span := g.startSpan(ctx, "Send")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	kind, ok := destinationKind(destinations)
	if !ok {
		slog.WarnContext(ctx, "refusing mixed destination kinds", "destinations", destinations)
		return entity.DeliveryReport{
			Message: "Destinations must all be email addresses or all phone numbers.",
		}, nil
	}

	switch kind {
	case entity.KindEmail:
		return g.sendEmail(ctx, message, subject, destinations)
	case entity.KindMobile:
		return g.sendSMS(ctx, message, subject, destinations, fallback)
	default:
		return entity.DeliveryReport{
			Message: "Destination is neither an email address nor a phone number.",
		}, nil
	}
}

func (g *Gateway) sendEmail(ctx context.Context, message, subject string, destinations []string) (entity.DeliveryReport, error) {
	ctx, span := g.startSpan(ctx, "sendEmail")
	defer span.End()

	err := g.mailer.Send(ctx, mail.Message{
		From:     g.from,
		To:       destinations,
		Subject:  subject,
		TextBody: message,
	})
	if err != nil {
		if ctx.Err() != nil {
			return entity.DeliveryReport{}, ctx.Err()
		}
		slog.ErrorContext(ctx, "failed to send email", "destinations", destinations, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return entity.DeliveryReport{
			Message: "We could not deliver the code to your email address. Please try again.",
		}, nil
	}

	return entity.DeliveryReport{
		Success: true,
		Message: "A code has been sent to your email address.",
	}, nil
}

func (g *Gateway) sendSMS(ctx context.Context, message, subject string, destinations, fallback []string) (entity.DeliveryReport, error) {
	ctx, span := g.startSpan(ctx, "sendSMS")
	defer span.End()

	var failed error
	for _, to := range destinations {
		backoff := retry.WithMaxRetries(smsRetryAttempts, retry.NewFibonacci(smsRetryBackoff))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			_, err := g.texter.Send(ctx, sms.Message{To: to, Text: message})
			if err != nil && ctx.Err() == nil {
				return retry.RetryableError(err)
			}
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return entity.DeliveryReport{}, ctx.Err()
			}
			slog.WarnContext(ctx, "failed to send sms", "destination", to, "error", err)
			failed = err
		}
	}

	if failed == nil {
		return entity.DeliveryReport{
			Success: true,
			Message: "A code has been sent to your phone number.",
		}, nil
	}

	span.RecordError(failed)
	if len(fallback) == 0 {
		span.SetStatus(codes.Error, failed.Error())
		return entity.DeliveryReport{
			Message: "We could not deliver the code to your phone number. Please try again.",
		}, nil
	}

	slog.InfoContext(ctx, "sms delivery failed, falling back to email", "fallback", fallback)
	report, err := g.sendEmail(ctx, message, subject, fallback)
	if err != nil {
		return entity.DeliveryReport{}, err
	}
	if report.Success {
		report.Message = "We could not reach your phone number; the code has been sent to your email address instead."
	}
	return report, nil
}

// destinationKind classifies the batch and reports whether it is homogeneous.
func destinationKind(destinations []string) (entity.DestinationKind, bool) {
	if len(destinations) == 0 {
		return entity.KindUnknown, false
	}

	kind := entity.ClassifyDestination(destinations[0])
	for _, d := range destinations[1:] {
		if entity.ClassifyDestination(d) != kind {
			return entity.KindUnknown, false
		}
	}
	return kind, true
}

func (g *Gateway) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return g.ins.Tracer("auth.outbound.notify").Start(ctx, name)
}
