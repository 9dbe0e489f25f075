package logic

import (
	"github.com/copo888/gateway_app/common/constants"
	"github.com/copo888/gateway_app/common/errorx"
	"github.com/copo888/gateway_app/common/responsex"
	"github.com/copo888/gateway_app/common/typesX"
	"github.com/copo888/gateway_app/internal/types"
	"github.com/shopspring/decimal"
)

// 金额一律以 10^-2 最小单位换算, 禁止浮点
const currencyExponent = 2

func minorToMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -currencyExponent)
}

// 可被回调推进的前置狀態
var activeStatuses = []string{
	constants.ORDER_STATUS_PENDING,
	constants.ORDER_STATUS_PROCESSING,
	constants.ORDER_STATUS_ON_HOLD,
}

// isReplay 幂等检查: 同一平台流水号且訂單已在目標狀態, 再次套用即為重放
func isReplay(order *typesX.OrderData, data *types.PayCallBackData) bool {
	if order.PlatformOrderNo == "" || order.PlatformOrderNo != data.PlatformOrderNo {
		return false
	}
	switch data.OrderStatus {
	case constants.PLATFORM_STATUS_SUCCESS:
		return order.Status == constants.ORDER_STATUS_COMPLETED
	case constants.PLATFORM_STATUS_FAIL:
		return order.Status == constants.ORDER_STATUS_FAILED
	case constants.PLATFORM_STATUS_CANCEL:
		return order.Status == constants.ORDER_STATUS_CANCELLED
	case constants.PLATFORM_STATUS_WAIT_3DS:
		return order.Status == constants.ORDER_STATUS_ON_HOLD
	}
	return false
}

// reconcile 金额对账: 回调实付与訂單总额差额須在容差內, 货币不符即硬錯
func reconcile(order *typesX.OrderData, data *types.PayCallBackData, toleranceMinor int64) error {
	if order.CurrencyCode != data.Currency {
		return errorx.New(responsex.INVALID_CURRENCY,
			"order currency "+order.CurrencyCode+", callback currency "+data.Currency)
	}
	diff := minorToMajor(data.PaidAmount).Sub(minorToMajor(order.TotalAmount)).Abs()
	if diff.GreaterThan(minorToMajor(toleranceMinor)) {
		return errorx.New(responsex.RECONCILE_ERROR,
			"order total "+minorToMajor(order.TotalAmount).String()+
				", paid "+minorToMajor(data.PaidAmount).String())
	}
	return nil
}

// buildTransition 將平台回调狀態映射為本地狀態轉移
// 回傳 nil 轉移代表本次回调不产生落地 (PENDING)
func buildTransition(order *typesX.OrderData, result *types.PayCallBackResult, toleranceMinor int64) (*typesX.OrderTransition, error) {
	data := &result.Data

	switch data.OrderStatus {
	case constants.PLATFORM_STATUS_SUCCESS:
		if err := reconcile(order, data, toleranceMinor); err != nil {
			return nil, err
		}
		return &typesX.OrderTransition{
			MerchantOrderNo: order.MerchantOrderNo,
			PlatformOrderNo: data.PlatformOrderNo,
			FromStatuses:    activeStatuses,
			ToStatus:        constants.ORDER_STATUS_COMPLETED,
			PaidAmount:      data.PaidAmount,
			Fee:             data.Fee,
			PayMethod:       data.PayMethod,
			FinishTime:      data.FinishTime,
		}, nil

	case constants.PLATFORM_STATUS_FAIL:
		return &typesX.OrderTransition{
			MerchantOrderNo: order.MerchantOrderNo,
			PlatformOrderNo: data.PlatformOrderNo,
			FromStatuses:    activeStatuses,
			ToStatus:        constants.ORDER_STATUS_FAILED,
			FailCode:        result.Code,
			FailMsg:         result.Message,
		}, nil

	case constants.PLATFORM_STATUS_CANCEL:
		return &typesX.OrderTransition{
			MerchantOrderNo: order.MerchantOrderNo,
			PlatformOrderNo: data.PlatformOrderNo,
			FromStatuses:    activeStatuses,
			ToStatus:        constants.ORDER_STATUS_CANCELLED,
		}, nil

	case constants.PLATFORM_STATUS_WAIT_3DS:
		// 非终态: 只記錄挑战導向資訊供前端取用
		return &typesX.OrderTransition{
			MerchantOrderNo: order.MerchantOrderNo,
			PlatformOrderNo: data.PlatformOrderNo,
			FromStatuses:    []string{constants.ORDER_STATUS_PENDING, constants.ORDER_STATUS_PROCESSING},
			ToStatus:        constants.ORDER_STATUS_ON_HOLD,
			ThreeDSUrl:      data.RedirectUrl,
		}, nil

	case constants.PLATFORM_STATUS_PENDING:
		// 非终态: 等下一次回调, 不落地
		return nil, nil
	}

	return nil, errorx.New(responsex.MALFORMED_PAYLOAD, "unknown order_status "+data.OrderStatus)
}
