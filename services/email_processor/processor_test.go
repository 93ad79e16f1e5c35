package email_processor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenji-jpg/bread-myship-worker/config"
	"github.com/kenji-jpg/bread-myship-worker/dto"
	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
	"github.com/kenji-jpg/bread-myship-worker/internal/logger"
	"github.com/kenji-jpg/bread-myship-worker/services/breadapi"
	"github.com/kenji-jpg/bread-myship-worker/services/reconciler"
)

type rpcCall struct {
	procedure string
	params    map[string]interface{}
}

// rpcRecorder is an httptest backend standing in for the bread API.
type rpcRecorder struct {
	mu    sync.Mutex
	calls []rpcCall
}

func (r *rpcRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var params map[string]interface{}
		json.NewDecoder(req.Body).Decode(&params)

		r.mu.Lock()
		r.calls = append(r.calls, rpcCall{
			procedure: strings.TrimPrefix(req.URL.Path, "/rest/v1/rpc/"),
			params:    params,
		})
		r.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}
}

func (r *rpcRecorder) recorded() []rpcCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]rpcCall(nil), r.calls...)
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func newTestProcessor(apiURL string) *Processor {
	log := getLogger()
	breadAPI := breadapi.NewBreadAPIService(&config.BreadAPIConfig{
		URL:        apiURL,
		ServiceKey: "test-service-key",
	}, log)
	reconcilerService := reconciler.NewReconcilerService(breadAPI, log, nil)
	cfg := &config.MyshipConfig{SenderAddress: "no-reply@sp88.com"}
	return NewProcessor(cfg, reconcilerService, nil, nil, nil, log)
}

func rawMessage(from, to string, bodyLines ...string) dto.RawEmailMessage {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: shipping notification",
		"Content-Type: text/html; charset=utf-8",
		"",
	}
	raw := strings.Join(append(headers, bodyLines...), "\r\n")
	return dto.RawEmailMessage{
		Source:   enum.EmailSourceWebhook,
		From:     from,
		To:       to,
		Subject:  "shipping notification",
		RawBytes: []byte(raw),
	}
}

func TestProcessMessage_OrderConfirmed(t *testing.T) {
	recorder := &rpcRecorder{}
	ts := httptest.NewServer(recorder.handler())
	defer ts.Close()

	p := newTestProcessor(ts.URL)
	msg := rawMessage("no-reply@sp88.com", "shop@tenant.example",
		"<html><body>",
		"有新的訂單成立",
		"<table><tr><td>賣場名稱：</td><td>260206-5981_Abby Bambi</td></tr></table>",
		"訂單編號 CM1234567890",
		"</body></html>",
	)

	outcome := p.ProcessMessage(context.Background(), msg)

	assert.Equal(t, enum.OutcomeDispatched, outcome)

	calls := recorder.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "myship_order_confirmed", calls[0].procedure)
	assert.Equal(t, map[string]interface{}{
		"store_name": "260206-5981_Abby Bambi",
		"order_no":   "CM1234567890",
		"email":      "shop@tenant.example",
	}, calls[0].params)
}

func TestProcessMessage_PickupCompleted(t *testing.T) {
	recorder := &rpcRecorder{}
	ts := httptest.NewServer(recorder.handler())
	defer ts.Close()

	p := newTestProcessor(ts.URL)
	msg := rawMessage("no-reply@sp88.com", "shop@tenant.example",
		"<html><body>買家已完成取件 訂單編號 CM9876543210</body></html>",
	)

	outcome := p.ProcessMessage(context.Background(), msg)

	assert.Equal(t, enum.OutcomeDispatched, outcome)

	calls := recorder.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "myship_pickup_completed", calls[0].procedure)
	assert.Equal(t, map[string]interface{}{
		"order_no": "CM9876543210",
		"email":    "shop@tenant.example",
	}, calls[0].params)
}

func TestProcessMessage_SenderDisplayNameStripped(t *testing.T) {
	recorder := &rpcRecorder{}
	ts := httptest.NewServer(recorder.handler())
	defer ts.Close()

	p := newTestProcessor(ts.URL)
	msg := rawMessage(`"MyShip" <no-reply@sp88.com>`, "shop@tenant.example",
		"<html><body>買家已完成取件 CM9876543210</body></html>",
	)

	outcome := p.ProcessMessage(context.Background(), msg)

	assert.Equal(t, enum.OutcomeDispatched, outcome)
	assert.Len(t, recorder.recorded(), 1)
}

func TestProcessMessage_ForeignSenderIgnored(t *testing.T) {
	recorder := &rpcRecorder{}
	ts := httptest.NewServer(recorder.handler())
	defer ts.Close()

	p := newTestProcessor(ts.URL)
	msg := rawMessage("random@other.com", "shop@tenant.example",
		"<html><body>有新的訂單成立 CM1234567890</body></html>",
	)

	outcome := p.ProcessMessage(context.Background(), msg)

	assert.Equal(t, enum.OutcomeIgnoredSender, outcome)
	assert.Len(t, recorder.recorded(), 0)
}

func TestProcessMessage_UnknownTemplateSkipped(t *testing.T) {
	recorder := &rpcRecorder{}
	ts := httptest.NewServer(recorder.handler())
	defer ts.Close()

	p := newTestProcessor(ts.URL)
	msg := rawMessage("no-reply@sp88.com", "shop@tenant.example",
		"<html><body>本週促銷活動開跑</body></html>",
	)

	outcome := p.ProcessMessage(context.Background(), msg)

	assert.Equal(t, enum.OutcomeSkippedUnknown, outcome)
	assert.Len(t, recorder.recorded(), 0)
}

func TestProcessMessage_MissingFieldsSkipsRPC(t *testing.T) {
	recorder := &rpcRecorder{}
	ts := httptest.NewServer(recorder.handler())
	defer ts.Close()

	p := newTestProcessor(ts.URL)
	// order confirmation without a store name
	msg := rawMessage("no-reply@sp88.com", "shop@tenant.example",
		"<html><body>有新的訂單成立 CM1234567890</body></html>",
	)

	outcome := p.ProcessMessage(context.Background(), msg)

	assert.Equal(t, enum.OutcomeMissingFields, outcome)
	assert.Len(t, recorder.recorded(), 0)
}

func TestProcessMessage_EmptyPayload(t *testing.T) {
	recorder := &rpcRecorder{}
	ts := httptest.NewServer(recorder.handler())
	defer ts.Close()

	p := newTestProcessor(ts.URL)
	msg := dto.RawEmailMessage{
		Source:  enum.EmailSourceWebhook,
		From:    "no-reply@sp88.com",
		To:      "shop@tenant.example",
		Subject: "empty",
	}

	outcome := p.ProcessMessage(context.Background(), msg)

	assert.Equal(t, enum.OutcomeDecodeFailed, outcome)
	assert.Len(t, recorder.recorded(), 0)
}

type panickingReconciler struct{}

func (panickingReconciler) Dispatch(ctx context.Context, parsed dto.ParsedEmail, subject string) dto.DispatchResult {
	panic("dispatch exploded")
}

func TestProcessMessage_PanicRecovered(t *testing.T) {
	log := getLogger()
	cfg := &config.MyshipConfig{SenderAddress: "no-reply@sp88.com"}
	p := NewProcessor(cfg, panickingReconciler{}, nil, nil, nil, log)

	msg := rawMessage("no-reply@sp88.com", "shop@tenant.example",
		"<html><body>買家已完成取件 CM9876543210</body></html>",
	)

	var outcome enum.ProcessingOutcome
	assert.NotPanics(t, func() {
		outcome = p.ProcessMessage(context.Background(), msg)
	})
	assert.Equal(t, enum.OutcomePanicRecovered, outcome)
}
