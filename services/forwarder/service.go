package forwarder

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/opentracing/opentracing-go"

	"github.com/kenji-jpg/bread-myship-worker/config"
	"github.com/kenji-jpg/bread-myship-worker/dto"
	"github.com/kenji-jpg/bread-myship-worker/interfaces"
	"github.com/kenji-jpg/bread-myship-worker/internal/logger"
	"github.com/kenji-jpg/bread-myship-worker/internal/tracing"
	"github.com/kenji-jpg/bread-myship-worker/internal/utils"
)

// smtpForwarder relays a raw message verbatim to the configured fallback
// mailbox. The original MIME payload is re-sent as-is; only the envelope
// recipient changes.
type smtpForwarder struct {
	smtpCfg   *config.SMTPConfig
	myshipCfg *config.MyshipConfig
	log       logger.Logger
}

func NewSMTPForwarder(smtpCfg *config.SMTPConfig, myshipCfg *config.MyshipConfig, log logger.Logger) interfaces.Forwarder {
	return &smtpForwarder{
		smtpCfg:   smtpCfg,
		myshipCfg: myshipCfg,
		log:       log,
	}
}

func (s *smtpForwarder) Forward(ctx context.Context, msg dto.RawEmailMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPForwarder.Forward")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("forward.to", s.myshipCfg.ForwardAddress)

	if !s.smtpCfg.Enabled() || s.myshipCfg.ForwardAddress == "" {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.smtpCfg.Server, s.smtpCfg.Port)
	auth := smtp.PlainAuth("", s.smtpCfg.Username, s.smtpCfg.Password, s.smtpCfg.Server)

	from := utils.ExtractAddress(msg.To)
	if from == "" {
		from = s.smtpCfg.Username
	}

	err := smtp.SendMail(addr, auth, from, []string{s.myshipCfg.ForwardAddress}, msg.RawBytes)
	if err != nil {
		err = fmt.Errorf("failed to forward email: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	s.log.Infof("forwarded email from %s to fallback mailbox %s", msg.From, s.myshipCfg.ForwardAddress)
	return nil
}
