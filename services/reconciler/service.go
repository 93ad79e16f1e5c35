package reconciler

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/kenji-jpg/bread-myship-worker/dto"
	"github.com/kenji-jpg/bread-myship-worker/interfaces"
	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
	"github.com/kenji-jpg/bread-myship-worker/internal/logger"
	"github.com/kenji-jpg/bread-myship-worker/internal/metrics"
	"github.com/kenji-jpg/bread-myship-worker/internal/tracing"
	"github.com/kenji-jpg/bread-myship-worker/services/breadapi"
)

type reconcilerService struct {
	breadAPI interfaces.BreadAPIClient
	log      logger.Logger
	metrics  *metrics.WorkerMetrics
}

func NewReconcilerService(breadAPI interfaces.BreadAPIClient, log logger.Logger, workerMetrics *metrics.WorkerMetrics) interfaces.Reconciler {
	return &reconcilerService{
		breadAPI: breadAPI,
		log:      log,
		metrics:  workerMetrics,
	}
}

// Dispatch maps one classified email to at most one remote state transition.
// A missing required field or unknown type is a logged terminal outcome, not
// an error; the message is not queued or retried.
func (s *reconcilerService) Dispatch(ctx context.Context, parsed dto.ParsedEmail, subject string) dto.DispatchResult {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ReconcilerService.Dispatch")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("email.type", parsed.Type.String())

	switch parsed.Type {
	case enum.EmailTypeOrderConfirmed:
		if parsed.StoreName == nil || parsed.OrderNo == nil {
			s.log.Warnf("order confirmation email missing required fields, storeName=%v orderNo=%v, skipping RPC",
				deref(parsed.StoreName), deref(parsed.OrderNo))
			return dto.DispatchResult{Outcome: enum.OutcomeMissingFields}
		}
		return s.call(ctx, breadapi.ProcedureOrderConfirmed, map[string]interface{}{
			"store_name": *parsed.StoreName,
			"order_no":   *parsed.OrderNo,
			"email":      nullableEmail(parsed.RecipientEmail),
		}, parsed)

	case enum.EmailTypePickupCompleted:
		if parsed.OrderNo == nil {
			s.log.Warnf("pickup completion email missing order number, skipping RPC")
			return dto.DispatchResult{Outcome: enum.OutcomeMissingFields}
		}
		return s.call(ctx, breadapi.ProcedurePickupCompleted, map[string]interface{}{
			"order_no": *parsed.OrderNo,
			"email":    nullableEmail(parsed.RecipientEmail),
		}, parsed)

	default:
		s.log.Infof("unrecognized myship email, subject=%q type=%s, no RPC dispatched", subject, parsed.Type)
		return dto.DispatchResult{Outcome: enum.OutcomeSkippedUnknown}
	}
}

func (s *reconcilerService) call(ctx context.Context, procedure string, params map[string]interface{}, parsed dto.ParsedEmail) dto.DispatchResult {
	result, err := s.breadAPI.CallRPC(ctx, procedure, params)
	if err != nil {
		s.metrics.RPCCall(procedure, false)
		s.log.Errorf("RPC %s could not be issued for order %s: %v", procedure, deref(parsed.OrderNo), err)
		return dto.DispatchResult{Outcome: enum.OutcomeRPCFailed, Procedure: procedure}
	}

	s.metrics.RPCCall(procedure, result.Success)

	if !result.Success {
		s.log.Errorf("RPC %s failed for order %s store %q: %s",
			procedure, deref(parsed.OrderNo), deref(parsed.StoreName), deref(result.Error))
		return dto.DispatchResult{Outcome: enum.OutcomeRPCFailed, Procedure: procedure, RPC: result}
	}

	s.log.Infof("RPC %s succeeded for order %s store %q, checkout=%s oldStatus=%s",
		procedure, deref(parsed.OrderNo), deref(parsed.StoreName),
		deref(result.CheckoutNo), deref(result.OldStatus))
	return dto.DispatchResult{Outcome: enum.OutcomeDispatched, Procedure: procedure, RPC: result}
}

// nullableEmail maps an absent recipient to JSON null rather than "".
func nullableEmail(email string) interface{} {
	if email == "" {
		return nil
	}
	return email
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
