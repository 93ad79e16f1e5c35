package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenji-jpg/bread-myship-worker/dto"
)

type stubBreadAPI struct {
	calls  int
	result *dto.RPCResult
	err    error

	lastProcedure string
	lastParams    map[string]interface{}
}

func (s *stubBreadAPI) CallRPC(ctx context.Context, procedure string, params map[string]interface{}) (*dto.RPCResult, error) {
	s.calls++
	s.lastProcedure = procedure
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newDispatchRouter(stub *stubBreadAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/", Dispatch(stub))
	return r
}

func postJSON(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestDispatch_OrderConfirmedPassthrough(t *testing.T) {
	raw := `{"success": true, "checkout_no": "CO-42", "old_status": "pending"}`
	stub := &stubBreadAPI{result: &dto.RPCResult{
		Success: true,
		Raw:     json.RawMessage(raw),
	}}
	r := newDispatchRouter(stub)

	w := postJSON(r, `{"type":"order_confirmed","store_name":"Some Store","order_no":"CM1234567890","email":"shop@tenant.example"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	// the remote response body is returned verbatim
	assert.JSONEq(t, raw, w.Body.String())

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "myship_order_confirmed", stub.lastProcedure)
	assert.Equal(t, map[string]interface{}{
		"store_name": "Some Store",
		"order_no":   "CM1234567890",
		"email":      "shop@tenant.example",
	}, stub.lastParams)
}

func TestDispatch_PickupCompleted(t *testing.T) {
	stub := &stubBreadAPI{result: &dto.RPCResult{
		Success: true,
		Raw:     json.RawMessage(`{"success": true}`),
	}}
	r := newDispatchRouter(stub)

	w := postJSON(r, `{"type":"pickup_completed","order_no":"CM9876543210"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, stub.calls)
	assert.Equal(t, "myship_pickup_completed", stub.lastProcedure)
	assert.Nil(t, stub.lastParams["email"])
}

func TestDispatch_InvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"type":`},
		{name: "unknown type", body: `{"type":"something_else","order_no":"CM1234567890"}`},
		{name: "order confirmation without store name", body: `{"type":"order_confirmed","order_no":"CM1234567890"}`},
		{name: "order confirmation without order number", body: `{"type":"order_confirmed","store_name":"Some Store"}`},
		{name: "pickup completion without order number", body: `{"type":"pickup_completed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubBreadAPI{}
			r := newDispatchRouter(stub)

			w := postJSON(r, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error": "Invalid request"}`, w.Body.String())
			assert.Equal(t, 0, stub.calls)
		})
	}
}

func TestDispatch_ClientError(t *testing.T) {
	stub := &stubBreadAPI{err: assert.AnError}
	r := newDispatchRouter(stub)

	w := postJSON(r, `{"type":"pickup_completed","order_no":"CM9876543210"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
