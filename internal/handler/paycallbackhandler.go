package handler

import (
	"io"
	"net/http"

	"github.com/copo888/gateway_app/common/constants"
	"github.com/copo888/gateway_app/internal/logic"
	"github.com/copo888/gateway_app/internal/svc"
	"github.com/thinkeridea/go-extend/exnet"
	"github.com/zeromicro/go-zero/core/logx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PayCallBackHandler 平台回调入口, 应答只有 SUCCESS / FAIL 两種,
// 任何非 SUCCESS 应答平台都会重试
func PayCallBackHandler(ctx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		span := trace.SpanFromContext(r.Context())
		defer span.End()

		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			w.Write([]byte(constants.ACK_FAIL))
			return
		}

		logx.WithContext(r.Context()).Infof("PayCallBack enter: %s", string(bodyBytes))
		span.SetAttributes(attribute.KeyValue{
			Key:   "request",
			Value: attribute.StringValue(string(bodyBytes)),
		})

		myIP := exnet.ClientIP(r)

		l := logic.NewPayCallBackLogic(r.Context(), ctx)
		resp, err := l.PayCallBack(bodyBytes, myIP)
		if err != nil {
			logx.WithContext(r.Context()).Errorf("PayCallBack fail: %s", err.Error())
		}
		w.Write([]byte(resp))
	}
}
