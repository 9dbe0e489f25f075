package model

import (
	"github.com/copo888/gateway_app/common/typesX"
	"gorm.io/gorm"
)

// OrderStore 訂單存取介面, logic 依此介面操作訂單
type OrderStore interface {
	FindByMerchantOrderNo(merchantOrderNo string) (typesX.OrderData, error)
	ApplyTransition(t *typesX.OrderTransition) (applied bool, err error)
}

type Order struct {
	MyDB  *gorm.DB
	Table string
}

func NewOrder(mydb *gorm.DB, t ...string) *Order {
	table := "orders"
	if len(t) > 0 {
		table = t[0]
	}
	return &Order{
		MyDB:  mydb,
		Table: table,
	}
}

func (o *Order) FindByMerchantOrderNo(merchantOrderNo string) (order typesX.OrderData, err error) {
	err = o.MyDB.Table(o.Table).
		Where("merchant_order_no = ?", merchantOrderNo).
		Take(&order).Error
	return
}

// ApplyTransition 条件式更新: 只有訂單仍处于 FromStatuses 時才套用轉移,
// 重复回调或并发竞争下 RowsAffected 為 0, 视为未套用而非錯誤
func (o *Order) ApplyTransition(t *typesX.OrderTransition) (bool, error) {
	values := map[string]interface{}{
		"status":            t.ToStatus,
		"platform_order_no": t.PlatformOrderNo,
	}
	if t.PaidAmount > 0 {
		values["paid_amount"] = t.PaidAmount
	}
	if t.Fee > 0 {
		values["fee"] = t.Fee
	}
	if t.PayMethod != "" {
		values["pay_method"] = t.PayMethod
	}
	if t.FailCode != "" {
		values["fail_code"] = t.FailCode
		values["fail_msg"] = t.FailMsg
	}
	if t.ThreeDSUrl != "" {
		values["threeds_url"] = t.ThreeDSUrl
	}
	if t.FinishTime != "" {
		values["finish_time"] = t.FinishTime
	}

	db := o.MyDB.Table(o.Table).
		Where("merchant_order_no = ?", t.MerchantOrderNo).
		Where("status IN ?", t.FromStatuses).
		Updates(values)
	if db.Error != nil {
		return false, db.Error
	}
	return db.RowsAffected > 0, nil
}
