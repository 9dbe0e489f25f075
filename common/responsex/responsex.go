package responsex

import (
	"net/http"

	_ "github.com/copo888/gateway_app/locales"
	"github.com/zeromicro/go-zero/rest/httpx"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	TraceID string      `json:"traceId,omitempty"`
}

var printer = message.NewPrinter(language.Make("en"))

// Json 統一回應格式, message 依狀態碼從 locales 取得
func Json(w http.ResponseWriter, r *http.Request, code string, data interface{}, err error) {
	resp := Response{
		Code:    code,
		Message: printer.Sprintf(code),
		Data:    data,
		TraceID: trace.SpanContextFromContext(r.Context()).TraceID().String(),
	}
	httpx.OkJson(w, resp)
}
