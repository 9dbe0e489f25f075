package utils

import (
	"net"
	"strings"
)

// IPChecker 檢查來源IP是否在白名單內, 白名單為空時一律放行
// whiteList 以分號或逗號分隔, 支援單一IP及CIDR
func IPChecker(ip string, whiteList string) bool {
	if strings.TrimSpace(whiteList) == "" {
		return true
	}
	src := net.ParseIP(strings.TrimSpace(ip))
	if src == nil {
		return false
	}
	items := strings.FieldsFunc(whiteList, func(r rune) bool {
		return r == ';' || r == ','
	})
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			if _, ipNet, err := net.ParseCIDR(item); err == nil && ipNet.Contains(src) {
				return true
			}
			continue
		}
		if allow := net.ParseIP(item); allow != nil && allow.Equal(src) {
			return true
		}
	}
	return false
}
