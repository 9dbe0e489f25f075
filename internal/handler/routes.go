package handler

import (
	"net/http"

	"github.com/copo888/gateway_app/internal/svc"
	"github.com/zeromicro/go-zero/rest"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/api/pay-call-back",
				Handler: PayCallBackHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/audit-log",
				Handler: AuditQueryHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/health",
				Handler: HealthHandler(serverCtx),
			},
		},
	)
}
