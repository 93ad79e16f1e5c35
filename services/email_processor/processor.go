package email_processor

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"

	"github.com/kenji-jpg/bread-myship-worker/config"
	"github.com/kenji-jpg/bread-myship-worker/dto"
	"github.com/kenji-jpg/bread-myship-worker/interfaces"
	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
	"github.com/kenji-jpg/bread-myship-worker/internal/logger"
	"github.com/kenji-jpg/bread-myship-worker/internal/metrics"
	"github.com/kenji-jpg/bread-myship-worker/internal/tracing"
	"github.com/kenji-jpg/bread-myship-worker/internal/utils"
	"github.com/kenji-jpg/bread-myship-worker/services/myship"
)

type Processor struct {
	cfg        *config.MyshipConfig
	reconciler interfaces.Reconciler
	forwarder  interfaces.Forwarder
	events     interfaces.EventsPublisher
	metrics    *metrics.WorkerMetrics
	log        logger.Logger
}

func NewProcessor(
	cfg *config.MyshipConfig,
	reconciler interfaces.Reconciler,
	forwarder interfaces.Forwarder,
	events interfaces.EventsPublisher,
	workerMetrics *metrics.WorkerMetrics,
	log logger.Logger,
) *Processor {
	return &Processor{
		cfg:        cfg,
		reconciler: reconciler,
		forwarder:  forwarder,
		events:     events,
		metrics:    workerMetrics,
		log:        log,
	}
}

// ProcessMessage runs the full pipeline for one inbound message: sender
// filter, decode, classify, dispatch. It never panics out and never returns
// an error; the mail transport must always see a normal return, whatever
// happened inside.
func (p *Processor) ProcessMessage(ctx context.Context, msg dto.RawEmailMessage) (outcome enum.ProcessingOutcome) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Processor.ProcessMessage")
	defer span.Finish()
	tracing.SetDefaultListenerSpanTags(ctx, span)

	invocationID := utils.GenerateInvocationID()
	span.SetTag("invocation.id", invocationID)
	span.SetTag("email.source", msg.Source.String())

	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("[%s] panic while processing email from=%s subject=%q: %v\n%s",
				invocationID, msg.From, msg.Subject, r, debug.Stack())
			span.SetTag("error", true)
			outcome = enum.OutcomePanicRecovered
		}
	}()

	sender := cleanAddress(msg.From)
	if sender != p.cfg.SenderAddress {
		p.log.Infof("[%s] ignoring email from non-myship sender %s, subject=%q", invocationID, sender, msg.Subject)
		p.metrics.SenderIgnored()
		p.forwardIgnored(ctx, msg)
		return enum.OutcomeIgnoredSender
	}

	body, err := DecodeBody(msg.RawBytes)
	if err != nil {
		p.log.Errorf("[%s] failed to decode email from=%s subject=%q: %v", invocationID, msg.From, msg.Subject, err)
		tracing.TraceErr(span, err)
		p.metrics.EmailProcessed(enum.EmailTypeUnknown.String(), enum.OutcomeDecodeFailed.String())
		return enum.OutcomeDecodeFailed
	}

	parsed := myship.Parse(body, msg.To)
	span.SetTag("email.type", parsed.Type.String())
	tracing.LogObjectAsJson(span, "parsed", parsed)

	result := p.reconciler.Dispatch(ctx, parsed, msg.Subject)
	span.SetTag("outcome", result.Outcome.String())

	p.metrics.EmailProcessed(parsed.Type.String(), result.Outcome.String())
	p.publishProcessed(ctx, msg, parsed, result)

	return result.Outcome
}

// forwardIgnored relays non-matching messages to the fallback mailbox when
// forwarding is configured. Forward failures are logged only.
func (p *Processor) forwardIgnored(ctx context.Context, msg dto.RawEmailMessage) {
	if p.forwarder == nil || p.cfg.ForwardAddress == "" {
		return
	}
	if err := p.forwarder.Forward(ctx, msg); err != nil {
		p.log.Warnf("failed to forward email from=%s to fallback mailbox: %v", msg.From, err)
	}
}

func (p *Processor) publishProcessed(ctx context.Context, msg dto.RawEmailMessage, parsed dto.ParsedEmail, result dto.DispatchResult) {
	if p.events == nil {
		return
	}

	event := dto.EmailProcessedEvent{
		EventID:        uuid.NewString(),
		Source:         msg.Source,
		Type:           parsed.Type,
		Outcome:        result.Outcome,
		RecipientEmail: parsed.RecipientEmail,
		ProcessedAt:    time.Now().UTC(),
	}
	if parsed.OrderNo != nil {
		event.OrderNo = *parsed.OrderNo
	}
	if parsed.StoreName != nil {
		event.StoreName = *parsed.StoreName
	}

	if err := p.events.PublishEmailProcessed(ctx, event); err != nil {
		p.log.Warnf("failed to publish processed event for order %s: %v", event.OrderNo, err)
	}
}

// cleanAddress strips any display name and validates syntax, falling back to
// the raw header value when validation cannot clean it.
func cleanAddress(address string) string {
	address = utils.ExtractAddress(address)
	validation := mailvalidate.ValidateEmailSyntax(address)
	if validation.IsValid {
		return validation.CleanEmail
	}
	return address
}
