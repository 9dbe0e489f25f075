package handler

import (
	"net/http"

	"github.com/copo888/gateway_app/common/responsex"
	"github.com/copo888/gateway_app/internal/logic"
	"github.com/copo888/gateway_app/internal/svc"
	"github.com/copo888/gateway_app/internal/types"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func AuditQueryHandler(ctx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.AuditQueryRequest
		if err := httpx.Parse(r, &req); err != nil {
			responsex.Json(w, r, responsex.INVALID_PARAMETER, nil, err)
			return
		}

		l := logic.NewAuditQueryLogic(r.Context(), ctx)
		resp, err := l.AuditQuery(&req)
		if err != nil {
			responsex.Json(w, r, err.Error(), nil, err)
			return
		}
		responsex.Json(w, r, responsex.SUCCESS, resp, nil)
	}
}
