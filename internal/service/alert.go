package service

import (
	"github.com/gioco-play/gozzle"
	"github.com/zeromicro/go-zero/core/logx"
)

// Alerter 运维告警通知, 走独立背景呼叫, 不在回调请求路径上
type Alerter struct {
	url string
}

func NewAlerter(url string) *Alerter {
	return &Alerter{url: url}
}

func (a *Alerter) Notify(subject string, detail string) {
	if a.url == "" {
		logx.Errorf("ops alert (no AlertUrl configured): %s: %s", subject, detail)
		return
	}
	body := struct {
		Subject string `json:"subject"`
		Detail  string `json:"detail"`
	}{
		Subject: subject,
		Detail:  detail,
	}
	res, err := gozzle.Post(a.url).Timeout(10).JSON(body)
	if err != nil {
		logx.Errorf("ops alert delivery failed: %s", err.Error())
		return
	}
	if res.Status() != 200 {
		logx.Errorf("ops alert delivery failed. status: %d", res.Status())
	}
}
