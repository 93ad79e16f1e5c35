package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/kenji-jpg/bread-myship-worker/dto"
	"github.com/kenji-jpg/bread-myship-worker/interfaces"
	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
	"github.com/kenji-jpg/bread-myship-worker/internal/logger"
	"github.com/kenji-jpg/bread-myship-worker/internal/tracing"
	"github.com/kenji-jpg/bread-myship-worker/internal/utils"
)

type InboundHandler struct {
	processor interfaces.EmailProcessor
	log       logger.Logger
}

func NewInboundHandler(processor interfaces.EmailProcessor, log logger.Logger) *InboundHandler {
	return &InboundHandler{
		processor: processor,
		log:       log,
	}
}

// inboundEmailData is the webhook payload delivered by the mail-receiving
// service. RawMime carries the complete MIME payload, base64-encoded.
type inboundEmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	RawMime string `json:"raw_mime"`
}

// Receive accepts one inbound message, acknowledges immediately and runs the
// pipeline asynchronously. The mail transport never sees a processing
// failure; those surface only in logs and metrics.
func (h *InboundHandler) Receive() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "InboundHandler.Receive")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var emailData inboundEmailData
		if err := c.ShouldBindJSON(&emailData); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rawBytes, err := base64.StdEncoding.DecodeString(emailData.RawMime)
		if err != nil {
			// tolerate unencoded payloads
			rawBytes = []byte(emailData.RawMime)
		}

		msg := dto.RawEmailMessage{
			Source:   enum.EmailSourceWebhook,
			From:     emailData.From,
			To:       emailData.To,
			Subject:  emailData.Subject,
			RawBytes: rawBytes,
		}

		// Return accepted response immediately
		c.JSON(http.StatusAccepted, gin.H{"message": "Accepted"})

		appSource := utils.GetAppSourceFromContext(ctx)

		// Process email asynchronously
		go func() {
			defer func() {
				if r := recover(); r != nil {
					h.log.Errorf("panic recovered in inbound email processing: %v\n%s", r, debug.Stack())
				}
			}()

			processCtx := utils.WithCustomContext(context.Background(), &utils.CustomContext{AppSource: appSource})
			h.processor.ProcessMessage(processCtx, msg)
		}()
	}
}
