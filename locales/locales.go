package locales

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// init
func init() {
	initEn(language.Make("en"))
}

// initEn will init en support.
func initEn(tag language.Tag) {
	message.SetString(tag, "0", "Success")
	message.SetString(tag, "003", "系统忙碌中,请稍后再试")
	message.SetString(tag, "007", "此IP非法登錄，請設定白名單")
	message.SetString(tag, "009", "JSON格式或参数类型错误")
	message.SetString(tag, "102", "无效验签")
	message.SetString(tag, "103", "无效货币编码")
	message.SetString(tag, "110", "无效商户号")
	message.SetString(tag, "112", "无效金额")
	message.SetString(tag, "120", "签名出错")
	message.SetString(tag, "130", "回调内容解析失败")
	message.SetString(tag, "131", "金额对账不符")
	message.SetString(tag, "132", "未验签回调已拒绝")
	message.SetString(tag, "301", "系统验签错误")
	message.SetString(tag, "400", "系统错误")
	message.SetString(tag, "501", "商户订单号不存在")
	message.SetString(tag, "EX000", "Fail")
	message.SetString(tag, "EX001", "参数不合法")
}
