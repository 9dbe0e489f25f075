package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/copo888/gateway_app/common/audit"
	"github.com/copo888/gateway_app/common/constants"
	"github.com/copo888/gateway_app/common/constants/redisKey"
	"github.com/copo888/gateway_app/common/errorx"
	"github.com/copo888/gateway_app/common/responsex"
	"github.com/copo888/gateway_app/common/utils"
	"github.com/copo888/gateway_app/internal/payutils"
	"github.com/copo888/gateway_app/internal/svc"
	"github.com/copo888/gateway_app/internal/types"
	"github.com/zeromicro/go-zero/core/logx"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type PayCallBackLogic struct {
	logx.Logger
	ctx     context.Context
	svcCtx  *svc.ServiceContext
	traceID string
}

func NewPayCallBackLogic(ctx context.Context, svcCtx *svc.ServiceContext) PayCallBackLogic {
	return PayCallBackLogic{
		Logger:  logx.WithContext(ctx),
		ctx:     ctx,
		svcCtx:  svcCtx,
		traceID: trace.SpanContextFromContext(ctx).TraceID().String(),
	}
}

// PayCallBack 回调处理管线:
// 信封解析 -> 验签 -> 内文解析 -> 訂單解析 -> 狀態轉移 -> 应答
// 任何一步失败即应答 FAIL 讓平台重试, 全程留審計轨迹
func (l *PayCallBackLogic) PayCallBack(body []byte, ip string) (resp string, err error) {

	logx.WithContext(l.ctx).Infof("Enter PayCallBack. projectName: %s, ip: %s, len: %d",
		l.svcCtx.Config.ProjectName, ip, len(body))

	session := l.svcCtx.Recorder.StartSession(l.ctx, "pay-call-back", map[string]interface{}{
		"ip":      ip,
		"traceId": l.traceID,
	})
	finalStatus := constants.SESSION_STATUS_VERIFIED

	// 狀態套用中的任何 panic 於此边界吸收, 应答 FAIL 讓平台重试
	defer func() {
		if r := recover(); r != nil {
			logx.WithContext(l.ctx).Errorf("PayCallBack panic: %v", r)
			e := errorx.New(responsex.GENERAL_EXCEPTION, fmt.Sprintf("%v", r))
			session.Error(fmt.Sprintf("panic recovered: %v", r), nil)
			session.End(constants.SESSION_STATUS_FAILED, e)
			resp = constants.ACK_FAIL
			err = e
		}
	}()

	// 檢查白名單
	if isWhite := utils.IPChecker(ip, l.svcCtx.Config.WhiteList); !isWhite {
		return l.reject(session, responsex.IP_DENIED, "IP: "+ip, nil)
	}

	// 解外层信封, 验签前不碰 result 内文
	session.Enter("EnvelopeParser", "ParseCallBackEnvelope", map[string]interface{}{"bytes": len(body)})
	env, err := types.ParseCallBackEnvelope(body)
	if err != nil {
		session.Exit("EnvelopeParser", "ParseCallBackEnvelope", map[string]interface{}{"ok": false})
		return l.reject(session, errorx.Code(err, responsex.MALFORMED_ENVELOPE), err.Error(), map[string]interface{}{
			"body": string(body),
		})
	}
	session.Exit("EnvelopeParser", "ParseCallBackEnvelope", map[string]interface{}{
		"ok":         true,
		"merchantNo": env.MerchantNo,
	})

	if env.MerchantNo != l.svcCtx.Config.MerchantNo {
		return l.reject(session, responsex.INVALID_MERCHANT_NO, "merchantNo: "+env.MerchantNo, nil)
	}

	// 檢查驗簽
	if l.svcCtx.PlatformPublicKey == "" {
		if !l.svcCtx.Config.Verify.AllowUnverified {
			return l.reject(session, responsex.UNVERIFIED_DENIED,
				"platform public key not configured and AllowUnverified is off", nil)
		}
		// 配置允许的降级模式, 審計轨迹与最终狀態都要留下「未验签」的区别
		logx.WithContext(l.ctx).Errorf("callback accepted WITHOUT signature verification, merchantNo: %s, ip: %s",
			env.MerchantNo, ip)
		session.Decision("platform public key configured", "VERIFY_SKIPPED", map[string]interface{}{
			"merchantNo": env.MerchantNo,
			"ip":         ip,
		})
		finalStatus = constants.SESSION_STATUS_SKIPPED_VERIFY
	} else {
		session.Enter("SignatureEngine", "VerifyRSA", nil)
		isSameSign := payutils.VerifyRSA([]byte(env.Result), env.Sign, l.svcCtx.PlatformPublicKey)
		session.Exit("SignatureEngine", "VerifyRSA", map[string]interface{}{"ok": isSameSign})
		if !isSameSign {
			session.Error("SIGNATURE_INVALID", map[string]interface{}{
				"merchantNo": env.MerchantNo,
				"ip":         ip,
				"sign":       env.Sign,
			})
			session.End(constants.SESSION_STATUS_FAILED, errorx.New(responsex.INVALID_SIGN))
			return constants.ACK_FAIL, errorx.New(responsex.INVALID_SIGN)
		}
		session.Decision("signature matches result under platform public key", "PASS", nil)
	}

	// 解已验签内文
	session.Enter("EnvelopeParser", "DecodePaymentResult", nil)
	result, err := types.DecodePaymentResult(env.Result)
	if err != nil {
		session.Exit("EnvelopeParser", "DecodePaymentResult", map[string]interface{}{"ok": false})
		return l.reject(session, responsex.MALFORMED_PAYLOAD, err.Error(), map[string]interface{}{
			"result": env.Result,
		})
	}
	session.Exit("EnvelopeParser", "DecodePaymentResult", map[string]interface{}{
		"ok":              true,
		"orderNo":         result.Data.MerchantOrderNo,
		"platformOrderNo": result.Data.PlatformOrderNo,
		"orderStatus":     result.Data.OrderStatus,
	})

	orderNo := result.Data.MerchantOrderNo

	// 同一訂單串行化: 解析到套用之间持有訂單鎖
	release, locked, err := l.svcCtx.OrderLock.Acquire(l.ctx, redisKey.LOCK_ORDER+orderNo)
	if err != nil || !locked {
		detail := "lock not acquired"
		if err != nil {
			detail = err.Error()
		}
		return l.reject(session, responsex.SYSTEM_ERROR, "order lock: "+detail, map[string]interface{}{
			"orderNo": orderNo,
		})
	}
	defer release()

	// 取得訂單資訊
	session.Enter("OrderResolver", "FindByMerchantOrderNo", map[string]interface{}{"orderNo": orderNo})
	order, err := l.svcCtx.OrderModel.FindByMerchantOrderNo(orderNo)
	session.Exit("OrderResolver", "FindByMerchantOrderNo", map[string]interface{}{"found": err == nil})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			session.Error("ORDER_NOT_FOUND", map[string]interface{}{"orderNo": orderNo})
			if l.svcCtx.Config.Callback.AckUnknownOrders {
				// 策略: 非本商户訂單应答 SUCCESS 以停止平台重试
				session.Decision("unknown order ack policy", "ACK_SUCCESS", nil)
				session.End(constants.SESSION_STATUS_FAILED, errorx.New(responsex.ORDER_NUMBER_NOT_EXIST))
				return constants.ACK_SUCCESS, nil
			}
			return l.reject(session, responsex.ORDER_NUMBER_NOT_EXIST, "orderNo: "+orderNo, nil)
		}
		return l.reject(session, responsex.SYSTEM_ERROR, err.Error(), map[string]interface{}{
			"orderNo": orderNo,
		})
	}

	// 幂等: 同一平台流水号重放不再落地
	if isReplay(&order, &result.Data) {
		session.Decision("platform order no already applied", "REPLAY_NOOP", map[string]interface{}{
			"orderNo":         orderNo,
			"platformOrderNo": result.Data.PlatformOrderNo,
			"status":          order.Status,
		})
		session.End(finalStatus, nil)
		return constants.ACK_SUCCESS, nil
	}

	trans, err := buildTransition(&order, result, l.svcCtx.Config.Reconcile.ToleranceMinor)
	if err != nil {
		code := errorx.Code(err, responsex.GENERAL_EXCEPTION)
		if code == responsex.RECONCILE_ERROR || code == responsex.INVALID_CURRENCY {
			// 对账不符留待人工, 訂單不动
			go l.svcCtx.Alerter.Notify("reconciliation mismatch",
				fmt.Sprintf("orderNo: %s, sessionId: %s, detail: %s", orderNo, session.ID, err.Error()))
		}
		return l.reject(session, code, err.Error(), map[string]interface{}{
			"orderNo":     orderNo,
			"orderAmount": result.Data.OrderAmount,
			"paidAmount":  result.Data.PaidAmount,
			"currency":    result.Data.Currency,
		})
	}

	if trans == nil {
		// PENDING: 等待後续回调
		session.Decision("platform status terminal", "PENDING_NOOP", map[string]interface{}{"orderNo": orderNo})
		session.End(finalStatus, nil)
		return constants.ACK_SUCCESS, nil
	}

	session.Enter("OrderStateMachine", "ApplyTransition", map[string]interface{}{
		"orderNo":  orderNo,
		"toStatus": trans.ToStatus,
	})
	applied, err := l.svcCtx.OrderModel.ApplyTransition(trans)
	session.Exit("OrderStateMachine", "ApplyTransition", map[string]interface{}{"applied": applied})
	if err != nil {
		// 落地失败应答 FAIL, 平台重试即可补偿
		return l.reject(session, responsex.SYSTEM_ERROR, err.Error(), map[string]interface{}{
			"orderNo": orderNo,
		})
	}
	if !applied {
		// 条件式更新零命中: 并发重复回调已处理过
		session.Decision("conditional update matched rows", "NO_ROWS_REPLAY", map[string]interface{}{
			"orderNo": orderNo,
		})
	}

	session.End(finalStatus, nil)
	return constants.ACK_SUCCESS, nil
}

func (l *PayCallBackLogic) reject(session *audit.Session, code string, detail string, payload interface{}) (string, error) {
	e := errorx.New(code, detail)
	logx.WithContext(l.ctx).Errorf("PayCallBack rejected. code: %s, detail: %s", code, detail)
	session.Error(code+": "+detail, payload)
	session.End(constants.SESSION_STATUS_FAILED, e)
	return constants.ACK_FAIL, e
}
