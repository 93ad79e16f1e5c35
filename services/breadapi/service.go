package breadapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/kenji-jpg/bread-myship-worker/config"
	"github.com/kenji-jpg/bread-myship-worker/dto"
	"github.com/kenji-jpg/bread-myship-worker/interfaces"
	er "github.com/kenji-jpg/bread-myship-worker/internal/errors"
	"github.com/kenji-jpg/bread-myship-worker/internal/logger"
	"github.com/kenji-jpg/bread-myship-worker/internal/tracing"
)

// Remote procedures exposed by the bread API for shipping-notification
// reconciliation.
const (
	ProcedureOrderConfirmed  = "myship_order_confirmed"
	ProcedurePickupCompleted = "myship_pickup_completed"
)

type breadAPIService struct {
	cfg    *config.BreadAPIConfig
	log    logger.Logger
	client *http.Client
}

func NewBreadAPIService(cfg *config.BreadAPIConfig, log logger.Logger) interfaces.BreadAPIClient {
	return &breadAPIService{
		cfg: cfg,
		log: log,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CallRPC issues a single POST to the named remote procedure with the params
// as JSON body. Non-2xx responses and network failures are normalized into a
// failed RPCResult rather than returned as errors; the caller never retries.
func (s *breadAPIService) CallRPC(ctx context.Context, procedure string, params map[string]interface{}) (*dto.RPCResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "BreadAPIService.CallRPC")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("procedure", procedure)
	tracing.LogObjectAsJson(span, "params", params)

	if s.cfg.URL == "" || s.cfg.ServiceKey == "" {
		tracing.TraceErr(span, er.ErrRPCNotConfigured)
		return nil, er.ErrRPCNotConfigured
	}

	payload, err := json.Marshal(params)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to marshal params")
	}

	url := s.cfg.URL + "/rest/v1/rpc/" + procedure
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to create request")
	}

	// Server-to-server channel: the same service credential goes on both
	// headers.
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.cfg.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+s.cfg.ServiceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("RPC %s request failed: %v", procedure, err)
		return failedResult(fmt.Sprintf("RPC error: %v", err)), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("RPC %s: unable to read response body: %v", procedure, err)
		return failedResult("RPC error: unreadable response"), nil
	}

	span.SetTag("response.status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.log.Errorf("RPC %s returned status %d: %s", procedure, resp.StatusCode, string(body))
		return failedResult(fmt.Sprintf("RPC error: %d", resp.StatusCode)), nil
	}

	var result dto.RPCResult
	if err := json.Unmarshal(body, &result); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("RPC %s: failed to unmarshal response: %v", procedure, err)
		return failedResult("RPC error: malformed response"), nil
	}
	result.Raw = json.RawMessage(body)

	tracing.LogObjectAsJson(span, "result", result)
	return &result, nil
}

func failedResult(message string) *dto.RPCResult {
	return &dto.RPCResult{
		Success: false,
		Error:   &message,
	}
}
