package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenji-jpg/bread-myship-worker/dto"
	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
	"github.com/kenji-jpg/bread-myship-worker/internal/logger"
)

type stubProcessor struct {
	received chan dto.RawEmailMessage
}

func (s *stubProcessor) ProcessMessage(ctx context.Context, msg dto.RawEmailMessage) enum.ProcessingOutcome {
	s.received <- msg
	return enum.OutcomeDispatched
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func newInboundRouter(processor *stubProcessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewInboundHandler(processor, getLogger())
	r.POST("/v1/inbound", h.Receive())
	return r
}

func TestReceive_AcceptsAndProcessesAsync(t *testing.T) {
	processor := &stubProcessor{received: make(chan dto.RawEmailMessage, 1)}
	r := newInboundRouter(processor)

	rawMime := "From: no-reply@sp88.com\r\n\r\nbody"
	body := `{"from":"no-reply@sp88.com","to":"shop@tenant.example","subject":"order","raw_mime":"` +
		base64.StdEncoding.EncodeToString([]byte(rawMime)) + `"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/inbound", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	select {
	case msg := <-processor.received:
		assert.Equal(t, enum.EmailSourceWebhook, msg.Source)
		assert.Equal(t, "no-reply@sp88.com", msg.From)
		assert.Equal(t, "shop@tenant.example", msg.To)
		assert.Equal(t, []byte(rawMime), msg.RawBytes)
	case <-time.After(2 * time.Second):
		t.Fatal("processor was not invoked")
	}
}

func TestReceive_ToleratesUnencodedPayload(t *testing.T) {
	processor := &stubProcessor{received: make(chan dto.RawEmailMessage, 1)}
	r := newInboundRouter(processor)

	body := `{"from":"no-reply@sp88.com","to":"shop@tenant.example","subject":"order","raw_mime":"plain, not base64!"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/inbound", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	select {
	case msg := <-processor.received:
		assert.Equal(t, []byte("plain, not base64!"), msg.RawBytes)
	case <-time.After(2 * time.Second):
		t.Fatal("processor was not invoked")
	}
}

func TestReceive_MalformedBody(t *testing.T) {
	processor := &stubProcessor{received: make(chan dto.RawEmailMessage, 1)}
	r := newInboundRouter(processor)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/inbound", strings.NewReader(`{"from":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, processor.received, 0)
}
