package constants

// 審計日誌階段
const (
	AUDIT_STAGE_SESSION_START = "SESSION_START"
	AUDIT_STAGE_SESSION_END   = "SESSION_END"
	AUDIT_STAGE_ENTER         = "ENTER"
	AUDIT_STAGE_EXIT          = "EXIT"
	AUDIT_STAGE_DECISION      = "DECISION"
	AUDIT_STAGE_ERROR         = "ERROR"
)

// 回调处理最终狀態
const (
	SESSION_STATUS_VERIFIED       = "VERIFIED"
	SESSION_STATUS_SKIPPED_VERIFY = "SKIPPED_VERIFY"
	SESSION_STATUS_FAILED         = "FAILED"
)
