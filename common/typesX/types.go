package typesX

import "time"

// OrderData 本地訂單, 金额一律以最小货币单位(分)整数存放
type OrderData struct {
	ID              int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	MerchantOrderNo string    `json:"merchantOrderNo" gorm:"column:merchant_order_no;size:64;uniqueIndex;not null"`
	PlatformOrderNo string    `json:"platformOrderNo" gorm:"column:platform_order_no;size:64;index"` // 幂等标记: 最后套用的平台流水号
	Status          string    `json:"status" gorm:"column:status;size:20;not null;index"`
	TotalAmount     int64     `json:"totalAmount" gorm:"column:total_amount;not null"`
	PaidAmount      int64     `json:"paidAmount" gorm:"column:paid_amount;default:0"`
	Fee             int64     `json:"fee" gorm:"column:fee;default:0"`
	CurrencyCode    string    `json:"currencyCode" gorm:"column:currency_code;size:8;not null"`
	PayMethod       string    `json:"payMethod" gorm:"column:pay_method;size:32"`
	FailCode        string    `json:"failCode" gorm:"column:fail_code;size:32"`
	FailMsg         string    `json:"failMsg" gorm:"column:fail_msg;size:255"`
	ThreeDSUrl      string    `json:"threeDSUrl" gorm:"column:threeds_url;type:text"`
	FinishTime      string    `json:"finishTime" gorm:"column:finish_time;size:32"`
	CreatedAt       time.Time `json:"createdAt" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `json:"updatedAt" gorm:"column:updated_at;autoUpdateTime"`
}

// OrderTransition 狀態轉移指令, FromStatuses 為条件式更新的前置狀態
type OrderTransition struct {
	MerchantOrderNo string
	PlatformOrderNo string
	FromStatuses    []string
	ToStatus        string
	PaidAmount      int64
	Fee             int64
	PayMethod       string
	FailCode        string
	FailMsg         string
	ThreeDSUrl      string
	FinishTime      string
}

// AuditLogData 審計記錄, 只增不改
type AuditLogData struct {
	ID        int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	SessionID string    `json:"sessionId" gorm:"column:session_id;size:64;index;not null"`
	Seq       int64     `json:"seq" gorm:"column:seq;not null"`
	Depth     int       `json:"depth" gorm:"column:depth;default:0"`
	Stage     string    `json:"stage" gorm:"column:stage;size:20;not null"`
	Component string    `json:"component" gorm:"column:component;size:64"`
	Operation string    `json:"operation" gorm:"column:operation;size:64"`
	Message   string    `json:"message" gorm:"column:message;size:512"`
	Payload   string    `json:"payload" gorm:"column:payload;type:longtext"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;autoCreateTime"`
}
