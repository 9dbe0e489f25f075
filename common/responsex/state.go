package responsex

var (
	SUCCESS           = "0"     //"操作成功"
	FAIL              = "EX000" //"Fail"
	INVALID_PARAMETER = "EX001" //"参数不合法"

	SYSTEM_ERROR       = "003" //"系统錯誤,请稍后再试"
	IP_DENIED          = "007" //"此IP非法登錄，請設定白名單"
	MALFORMED_ENVELOPE = "009" //"JSON格式或参数类型错误"

	INVALID_SIGN        = "102" //"无效验签"
	INVALID_CURRENCY    = "103" //"无效货币编码"
	INVALID_MERCHANT_NO = "110" //"无效商户号"
	INVALID_AMOUNT      = "112" //"无效金额"
	KEY_ERROR           = "120" //"签名出错"

	MALFORMED_PAYLOAD = "130" //"回调内容解析失败"
	RECONCILE_ERROR   = "131" //"金额对账不符"
	UNVERIFIED_DENIED = "132" //"未验签回调已拒绝"

	SIGNATURE_ERROR   = "301" //"系统验签错误"
	GENERAL_EXCEPTION = "400" //"系统错误"

	ORDER_NUMBER_NOT_EXIST = "501" //"商户订单号不存在"
)
