package constants

// 本地訂單狀態
const (
	ORDER_STATUS_PENDING    = "pending"
	ORDER_STATUS_PROCESSING = "processing"
	ORDER_STATUS_ON_HOLD    = "on-hold"
	ORDER_STATUS_COMPLETED  = "completed"
	ORDER_STATUS_FAILED     = "failed"
	ORDER_STATUS_CANCELLED  = "cancelled"
)

// 平台回调訂單狀態
const (
	PLATFORM_STATUS_SUCCESS  = "SUCCESS"
	PLATFORM_STATUS_FAIL     = "FAIL"
	PLATFORM_STATUS_CANCEL   = "CANCEL"
	PLATFORM_STATUS_PENDING  = "PENDING"
	PLATFORM_STATUS_WAIT_3DS = "WAIT_3DS"
)

// 回调应答, 平台只認 SUCCESS, 其余一律重试
const (
	ACK_SUCCESS = "SUCCESS"
	ACK_FAIL    = "FAIL"
)
