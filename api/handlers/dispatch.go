package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/kenji-jpg/bread-myship-worker/dto"
	"github.com/kenji-jpg/bread-myship-worker/interfaces"
	"github.com/kenji-jpg/bread-myship-worker/internal/enum"
	"github.com/kenji-jpg/bread-myship-worker/internal/tracing"
	"github.com/kenji-jpg/bread-myship-worker/services/breadapi"
)

// Dispatch is the manual test surface for the dispatcher+client path: the
// request supplies the classification and fields directly, bypassing decoder
// and classifier, and the raw remote-procedure result is returned as-is.
func Dispatch(breadAPI interfaces.BreadAPIClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "DispatchHandler.Dispatch")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.DispatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		var procedure string
		var params map[string]interface{}

		switch req.Type {
		case enum.EmailTypeOrderConfirmed:
			if req.StoreName == "" || req.OrderNo == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			procedure = breadapi.ProcedureOrderConfirmed
			params = map[string]interface{}{
				"store_name": req.StoreName,
				"order_no":   req.OrderNo,
				"email":      nullable(req.Email),
			}

		case enum.EmailTypePickupCompleted:
			if req.OrderNo == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
			procedure = breadapi.ProcedurePickupCompleted
			params = map[string]interface{}{
				"order_no": req.OrderNo,
				"email":    nullable(req.Email),
			}

		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		span.SetTag("procedure", procedure)

		result, err := breadAPI.CallRPC(ctx, procedure, params)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if len(result.Raw) > 0 {
			c.Data(http.StatusOK, "application/json", result.Raw)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func nullable(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
