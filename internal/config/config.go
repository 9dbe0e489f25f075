package config

import (
	"github.com/zeromicro/go-zero/rest"
)

type Config struct {
	rest.RestConf
	ProjectName string
	MerchantNo  string
	Mysql       struct {
		Host       string
		Port       int
		DBName     string
		UserName   string
		Password   string
		DebugLevel string `json:",optional"`
	}
	RedisCache struct {
		RedisSentinelNode string `json:",optional"`
		RedisMasterName   string `json:",optional"`
		RedisDB           int    `json:",optional"`
	} `json:",optional"`
	Merchant struct {
		PrivateKey string `json:",optional"` // 商户私鑰, 出向加签用
	} `json:",optional"`
	Platform struct {
		PublicKey string `json:",optional"` // 平台公鑰, 入向验签用
	} `json:",optional"`
	Verify struct {
		// 平台公鑰未配置時是否放行未验签回调, 预設拒绝
		AllowUnverified bool `json:",optional"`
	} `json:",optional"`
	Reconcile struct {
		ToleranceMinor int64 `json:",optional"` // 对账容差, 最小货币单位
	} `json:",optional"`
	Callback struct {
		// 查无訂單時是否仍应答 SUCCESS 以停止平台重试
		AckUnknownOrders bool `json:",optional"`
	} `json:",optional"`
	Audit struct {
		Verbose               bool   `json:",optional"`
		AlertUrl              string `json:",optional"`
		FailureAlertThreshold int    `json:",optional"`
	} `json:",optional"`
	WhiteList string `json:",optional"`
}
