package handler

import (
	"net/http"

	"github.com/copo888/gateway_app/common/responsex"
	"github.com/copo888/gateway_app/internal/svc"
	"github.com/copo888/gateway_app/internal/types"
)

// HealthHandler 健康检查, 持续審計写入失败時状态降级
func HealthHandler(ctx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := types.HealthResponse{
			Status:        "ok",
			AuditFailures: ctx.Recorder.Failures(),
		}
		if resp.AuditFailures > 0 {
			resp.Status = "degraded"
		}
		responsex.Json(w, r, responsex.SUCCESS, resp, nil)
	}
}
