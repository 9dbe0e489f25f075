package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/copo888/gateway_app/common/constants"
	"github.com/copo888/gateway_app/common/typesX"
	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
)

// Store 審計記錄落地介面
type Store interface {
	Append(data *typesX.AuditLogData) error
}

// AlertFunc 持续写入失败時的告警通知
type AlertFunc func(subject string, detail string)

// Recorder 供整条回调管线使用的審計記錄器, 写入失败只記數不中断业务
type Recorder struct {
	store     Store
	verbose   bool
	threshold int64
	alert     AlertFunc
	failures  int64
}

func NewRecorder(store Store, verbose bool, threshold int, alert AlertFunc) *Recorder {
	if threshold <= 0 {
		threshold = 10
	}
	return &Recorder{
		store:     store,
		verbose:   verbose,
		threshold: int64(threshold),
		alert:     alert,
	}
}

// Failures 連續写入失败次數, 供健康检查使用
func (r *Recorder) Failures() int64 {
	return atomic.LoadInt64(&r.failures)
}

type Session struct {
	ID       string
	Label    string
	recorder *Recorder
	ctx      context.Context
	seq      int64
	depth    int32
	ended    int32
}

func (r *Recorder) StartSession(ctx context.Context, label string, payload map[string]interface{}) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Label:    label,
		recorder: r,
		ctx:      ctx,
	}
	s.append(constants.AUDIT_STAGE_SESSION_START, label, "", label, payload)
	return s
}

func (s *Session) Enter(component, operation string, params interface{}) {
	atomic.AddInt32(&s.depth, 1)
	if !s.recorder.verbose {
		return
	}
	s.append(constants.AUDIT_STAGE_ENTER, component, operation, "", params)
}

func (s *Session) Exit(component, operation string, result interface{}) {
	defer atomic.AddInt32(&s.depth, -1)
	if !s.recorder.verbose {
		return
	}
	s.append(constants.AUDIT_STAGE_EXIT, component, operation, "", result)
}

func (s *Session) Decision(condition, outcome string, payload interface{}) {
	s.append(constants.AUDIT_STAGE_DECISION, "", condition, outcome, payload)
}

func (s *Session) Error(message string, payload interface{}) {
	s.append(constants.AUDIT_STAGE_ERROR, "", "", message, payload)
}

// End 收尾記錄, 重复呼叫只生效一次
func (s *Session) End(finalStatus string, err error) {
	if !atomic.CompareAndSwapInt32(&s.ended, 0, 1) {
		return
	}
	payload := map[string]interface{}{"finalStatus": finalStatus}
	if err != nil {
		payload["error"] = err.Error()
	}
	s.append(constants.AUDIT_STAGE_SESSION_END, "", "", finalStatus, payload)
}

func (s *Session) append(stage, component, operation, message string, payload interface{}) {
	row := &typesX.AuditLogData{
		SessionID: s.ID,
		Seq:       atomic.AddInt64(&s.seq, 1),
		Depth:     int(atomic.LoadInt32(&s.depth)),
		Stage:     stage,
		Component: component,
		Operation: operation,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			row.Payload = string(b)
		} else {
			row.Payload = fmt.Sprintf("%+v", payload)
		}
	}

	if err := s.recorder.store.Append(row); err != nil {
		// 審計写入失败不可中断回调处理, 記數後放行
		n := atomic.AddInt64(&s.recorder.failures, 1)
		logx.WithContext(s.ctx).Errorf("audit append failed. sessionId: %s, stage: %s, err: %s", s.ID, stage, err.Error())
		if n == s.recorder.threshold && s.recorder.alert != nil {
			go s.recorder.alert("audit store failure",
				fmt.Sprintf("audit store failed %d times in a row, last sessionId: %s", n, s.ID))
		}
		return
	}
	atomic.StoreInt64(&s.recorder.failures, 0)
}
