package types

import (
	"encoding/json"

	"github.com/copo888/gateway_app/common/errorx"
	"github.com/copo888/gateway_app/common/responsex"
	"github.com/copo888/gateway_app/common/vaildx"
)

// CallBackEnvelope 外层传输信封, result 在验签通过前一律视為不透明字串
type CallBackEnvelope struct {
	MerchantNo string `json:"merchantNo"`
	MerchantId string `json:"merchant_id"`
	Result     string `json:"result"`
	Sign       string `json:"sign"`
	MyIp       string `json:"-"`
}

// ParseCallBackEnvelope 只解外层JSON并检查必填栏位, 不碰 result 内文
func ParseCallBackEnvelope(body []byte) (*CallBackEnvelope, error) {
	var env CallBackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errorx.New(responsex.MALFORMED_ENVELOPE, err.Error())
	}
	if env.MerchantNo == "" {
		env.MerchantNo = env.MerchantId
	}
	if env.MerchantNo == "" {
		return nil, errorx.New(responsex.MALFORMED_ENVELOPE, "missing merchantNo")
	}
	if env.Result == "" {
		return nil, errorx.New(responsex.MALFORMED_ENVELOPE, "missing result")
	}
	if env.Sign == "" {
		return nil, errorx.New(responsex.MALFORMED_ENVELOPE, "missing sign")
	}
	return &env, nil
}

// PayCallBackResult 验签通过後自 result 解出的支付結果
type PayCallBackResult struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    PayCallBackData `json:"data" validate:"required"`
}

// PayCallBackData 金额皆為最小货币单位整数, 浮点金额直接视為格式錯誤
type PayCallBackData struct {
	PlatformOrderNo string `json:"platform_order_id" validate:"required"`
	MerchantOrderNo string `json:"merchant_order_id" validate:"required"`
	OrderStatus     string `json:"order_status" validate:"required,oneof=SUCCESS FAIL CANCEL PENDING WAIT_3DS"`
	OrderAmount     int64  `json:"order_amount"`
	PaidAmount      int64  `json:"paid_amount"`
	Fee             int64  `json:"fee"`
	Currency        string `json:"currency" validate:"required"`
	PayMethod       string `json:"pay_method"`
	OrderTime       string `json:"order_time"`
	FinishTime      string `json:"finish_time"`
	RedirectUrl     string `json:"redirect_url"` // WAIT_3DS 挑战導向網址
}

// DecodePaymentResult 解开已验签的 result 内文
func DecodePaymentResult(result string) (*PayCallBackResult, error) {
	var payload PayCallBackResult
	if err := json.Unmarshal([]byte(result), &payload); err != nil {
		return nil, errorx.New(responsex.MALFORMED_PAYLOAD, err.Error())
	}
	if err := vaildx.Validator.Struct(&payload); err != nil {
		return nil, errorx.New(responsex.MALFORMED_PAYLOAD, err.Error())
	}
	return &payload, nil
}

type AuditQueryRequest struct {
	SessionId string `form:"sessionId,optional"`
	Keyword   string `form:"keyword,optional"`
	Limit     int    `form:"limit,optional"`
}

// AuditRecordVO 供运维查询的審計記錄视图, OrderNo/Ip 自 payload 提取
type AuditRecordVO struct {
	SessionId string                 `json:"sessionId"`
	Seq       int64                  `json:"seq"`
	Depth     int                    `json:"depth"`
	Stage     string                 `json:"stage"`
	Component string                 `json:"component,omitempty"`
	Operation string                 `json:"operation,omitempty"`
	Message   string                 `json:"message,omitempty"`
	OrderNo   string                 `json:"orderNo,omitempty"`
	Ip        string                 `json:"ip,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt string                 `json:"createdAt"`
}

type AuditQueryResponse struct {
	Total int             `json:"total"`
	Rows  []AuditRecordVO `json:"rows"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	AuditFailures int64  `json:"auditFailures"`
}
