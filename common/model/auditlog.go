package model

import (
	"github.com/copo888/gateway_app/common/typesX"
	"gorm.io/gorm"
)

// AuditQuerier 審計記錄讀取介面, 供运维查询 logic 使用
type AuditQuerier interface {
	BySession(sessionID string) ([]typesX.AuditLogData, error)
	Search(keyword string, limit int) ([]typesX.AuditLogData, error)
}

type AuditLog struct {
	MyDB  *gorm.DB
	Table string
}

func NewAuditLog(mydb *gorm.DB, t ...string) *AuditLog {
	table := "audit_logs"
	if len(t) > 0 {
		table = t[0]
	}
	return &AuditLog{
		MyDB:  mydb,
		Table: table,
	}
}

func (a *AuditLog) Append(data *typesX.AuditLogData) error {
	return a.MyDB.Table(a.Table).Create(data).Error
}

func (a *AuditLog) BySession(sessionID string) (rows []typesX.AuditLogData, err error) {
	err = a.MyDB.Table(a.Table).
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&rows).Error
	return
}

func (a *AuditLog) Search(keyword string, limit int) (rows []typesX.AuditLogData, err error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	err = a.MyDB.Table(a.Table).
		Where("message LIKE ? OR payload LIKE ?", "%"+keyword+"%", "%"+keyword+"%").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return
}
