package svc

import (
	"fmt"
	"strings"

	"github.com/copo888/gateway_app/common/audit"
	"github.com/copo888/gateway_app/common/lockx"
	"github.com/copo888/gateway_app/common/model"
	"github.com/copo888/gateway_app/internal/config"
	"github.com/copo888/gateway_app/internal/payutils"
	"github.com/copo888/gateway_app/internal/service"
	"github.com/go-redis/redis/v8"
	"github.com/neccoys/go-driver/mysqlx"
	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/gorm"
)

type ServiceContext struct {
	Config      config.Config
	RedisClient *redis.Client
	MyDB        *gorm.DB

	OrderModel model.OrderStore
	AuditQuery model.AuditQuerier
	Recorder   *audit.Recorder
	OrderLock  lockx.Locker
	Alerter    *service.Alerter

	MerchantPrivateKey payutils.MerchantPrivateKey
	PlatformPublicKey  payutils.PlatformPublicKey
}

func NewServiceContext(c config.Config) *ServiceContext {
	// Redis
	var redisCache *redis.Client
	if c.RedisCache.RedisSentinelNode != "" {
		redisCache = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    c.RedisCache.RedisMasterName,
			SentinelAddrs: strings.Split(c.RedisCache.RedisSentinelNode, ";"),
			DB:            c.RedisCache.RedisDB,
		})
	}

	// DB
	db, err := mysqlx.New(c.Mysql.Host, fmt.Sprintf("%d", c.Mysql.Port), c.Mysql.UserName, c.Mysql.Password, c.Mysql.DBName).
		SetCharset("utf8mb4").
		SetLoc("UTC").
		Connect(mysqlx.Pool(50, 100, 180))

	if err != nil {
		panic(err)
	}

	// 金鑰配置检查: 配置了就必須可解析, 避免带病上线
	if c.Merchant.PrivateKey != "" && !payutils.ValidateKey(c.Merchant.PrivateKey, payutils.KeyKindPrivate) {
		panic("merchant private key is configured but not a parsable RSA private key")
	}
	if c.Platform.PublicKey != "" && !payutils.ValidateKey(c.Platform.PublicKey, payutils.KeyKindPublic) {
		panic("platform public key is configured but not a parsable RSA public key")
	}
	if c.Platform.PublicKey == "" {
		logx.Errorf("platform public key is NOT configured, callback verification degraded. AllowUnverified: %v",
			c.Verify.AllowUnverified)
	}

	auditModel := model.NewAuditLog(db)
	alerter := service.NewAlerter(c.Audit.AlertUrl)
	recorder := audit.NewRecorder(auditModel, c.Audit.Verbose, c.Audit.FailureAlertThreshold, alerter.Notify)

	var orderLock lockx.Locker
	if redisCache != nil {
		orderLock = lockx.NewRedisLocker(redisCache)
	} else {
		orderLock = lockx.NewMemoryLocker()
	}

	return &ServiceContext{
		Config:             c,
		RedisClient:        redisCache,
		MyDB:               db,
		OrderModel:         model.NewOrder(db),
		AuditQuery:         auditModel,
		Alerter:            alerter,
		Recorder:           recorder,
		OrderLock:          orderLock,
		MerchantPrivateKey: payutils.MerchantPrivateKey(c.Merchant.PrivateKey),
		PlatformPublicKey:  payutils.PlatformPublicKey(c.Platform.PublicKey),
	}
}
