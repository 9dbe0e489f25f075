package logic

import (
	"context"
	"encoding/json"
	"time"

	"github.com/copo888/gateway_app/common/errorx"
	"github.com/copo888/gateway_app/common/responsex"
	"github.com/copo888/gateway_app/common/typesX"
	"github.com/copo888/gateway_app/internal/svc"
	"github.com/copo888/gateway_app/internal/types"
	"github.com/mitchellh/mapstructure"
	"github.com/zeromicro/go-zero/core/logx"
)

type AuditQueryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAuditQueryLogic(ctx context.Context, svcCtx *svc.ServiceContext) AuditQueryLogic {
	return AuditQueryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// AuditQuery 运维查询: 依 sessionId 重放单次回调轨迹, 或依關键字全文搜寻
func (l *AuditQueryLogic) AuditQuery(req *types.AuditQueryRequest) (*types.AuditQueryResponse, error) {
	var rows []typesX.AuditLogData
	var err error

	switch {
	case req.SessionId != "":
		rows, err = l.svcCtx.AuditQuery.BySession(req.SessionId)
	case req.Keyword != "":
		rows, err = l.svcCtx.AuditQuery.Search(req.Keyword, req.Limit)
	default:
		return nil, errorx.New(responsex.INVALID_PARAMETER, "sessionId or keyword is required")
	}
	if err != nil {
		return nil, errorx.New(responsex.SYSTEM_ERROR, err.Error())
	}

	resp := &types.AuditQueryResponse{
		Total: len(rows),
		Rows:  make([]types.AuditRecordVO, 0, len(rows)),
	}
	for i := range rows {
		resp.Rows = append(resp.Rows, toAuditVO(&rows[i]))
	}
	return resp, nil
}

// 自 payload 提取常用检索栏位 (orderNo, ip) 到视图层
type auditPayloadFields struct {
	OrderNo string `mapstructure:"orderNo"`
	Ip      string `mapstructure:"ip"`
}

func toAuditVO(row *typesX.AuditLogData) types.AuditRecordVO {
	vo := types.AuditRecordVO{
		SessionId: row.SessionID,
		Seq:       row.Seq,
		Depth:     row.Depth,
		Stage:     row.Stage,
		Component: row.Component,
		Operation: row.Operation,
		Message:   row.Message,
		CreatedAt: row.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if row.Payload == "" {
		return vo
	}
	payload := map[string]interface{}{}
	if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
		// 非JSON payload 原样带回
		vo.Payload = map[string]interface{}{"raw": row.Payload}
		return vo
	}
	vo.Payload = payload

	var fields auditPayloadFields
	if err := mapstructure.Decode(payload, &fields); err == nil {
		vo.OrderNo = fields.OrderNo
		vo.Ip = fields.Ip
	}
	return vo
}
