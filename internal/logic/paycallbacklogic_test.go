package logic

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/copo888/gateway_app/common/audit"
	"github.com/copo888/gateway_app/common/constants"
	"github.com/copo888/gateway_app/common/errorx"
	"github.com/copo888/gateway_app/common/lockx"
	"github.com/copo888/gateway_app/common/responsex"
	"github.com/copo888/gateway_app/common/typesX"
	"github.com/copo888/gateway_app/internal/config"
	"github.com/copo888/gateway_app/internal/payutils"
	"github.com/copo888/gateway_app/internal/service"
	"github.com/copo888/gateway_app/internal/svc"
	"github.com/copo888/gateway_app/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testMerchantNo = "M1001"

var (
	keyOnce     sync.Once
	testPrivPEM string
	testPubPEM  string
)

func testKeys() (payutils.MerchantPrivateKey, payutils.PlatformPublicKey) {
	keyOnce.Do(func() {
		priv, pub, err := payutils.GenerateKeyPair()
		if err != nil {
			panic(err)
		}
		testPrivPEM, testPubPEM = priv, pub
	})
	return payutils.MerchantPrivateKey(testPrivPEM), payutils.PlatformPublicKey(testPubPEM)
}

// memOrderStore mirrors the conditional-update semantics of the gorm store.
type memOrderStore struct {
	mu      sync.Mutex
	orders  map[string]*typesX.OrderData
	applies int
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{orders: map[string]*typesX.OrderData{}}
}

func (s *memOrderStore) put(o *typesX.OrderData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.MerchantOrderNo] = &cp
}

func (s *memOrderStore) get(orderNo string) (typesX.OrderData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderNo]
	if !ok {
		return typesX.OrderData{}, false
	}
	return *o, true
}

func (s *memOrderStore) FindByMerchantOrderNo(merchantOrderNo string) (typesX.OrderData, error) {
	o, ok := s.get(merchantOrderNo)
	if !ok {
		return typesX.OrderData{}, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (s *memOrderStore) ApplyTransition(t *typesX.OrderTransition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[t.MerchantOrderNo]
	if !ok {
		return false, nil
	}
	matched := false
	for _, from := range t.FromStatuses {
		if o.Status == from {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	o.Status = t.ToStatus
	o.PlatformOrderNo = t.PlatformOrderNo
	if t.PaidAmount > 0 {
		o.PaidAmount = t.PaidAmount
	}
	if t.Fee > 0 {
		o.Fee = t.Fee
	}
	if t.PayMethod != "" {
		o.PayMethod = t.PayMethod
	}
	if t.FailCode != "" {
		o.FailCode = t.FailCode
		o.FailMsg = t.FailMsg
	}
	if t.ThreeDSUrl != "" {
		o.ThreeDSUrl = t.ThreeDSUrl
	}
	if t.FinishTime != "" {
		o.FinishTime = t.FinishTime
	}
	s.applies++
	return true, nil
}

type memAuditStore struct {
	mu   sync.Mutex
	rows []typesX.AuditLogData
	fail bool
}

func (s *memAuditStore) Append(d *typesX.AuditLogData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("audit store unavailable")
	}
	s.rows = append(s.rows, *d)
	return nil
}

func (s *memAuditStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *memAuditStore) last() typesX.AuditLogData {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rows) == 0 {
		return typesX.AuditLogData{}
	}
	return s.rows[len(s.rows)-1]
}

func (s *memAuditStore) has(stage, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.Stage == stage && strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

type callbackEnv struct {
	svcCtx *svc.ServiceContext
	orders *memOrderStore
	rows   *memAuditStore
	priv   payutils.MerchantPrivateKey
}

func newCallbackEnv(t *testing.T) *callbackEnv {
	t.Helper()
	priv, pub := testKeys()

	orders := newMemOrderStore()
	rows := &memAuditStore{}
	alerter := service.NewAlerter("")

	cfg := config.Config{}
	cfg.ProjectName = "gateway"
	cfg.MerchantNo = testMerchantNo

	return &callbackEnv{
		svcCtx: &svc.ServiceContext{
			Config:            cfg,
			OrderModel:        orders,
			Recorder:          audit.NewRecorder(rows, false, 0, alerter.Notify),
			OrderLock:         lockx.NewMemoryLocker(),
			Alerter:           alerter,
			PlatformPublicKey: pub,
		},
		orders: orders,
		rows:   rows,
		priv:   priv,
	}
}

func (h *callbackEnv) signedBody(t *testing.T, result *types.PayCallBackResult) []byte {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	sign, err := payutils.SignRSA(raw, h.priv)
	require.NoError(t, err)
	body, err := json.Marshal(map[string]string{
		"merchantNo": testMerchantNo,
		"result":     string(raw),
		"sign":       sign,
	})
	require.NoError(t, err)
	return body
}

func (h *callbackEnv) run(body []byte) (string, error) {
	l := NewPayCallBackLogic(context.Background(), h.svcCtx)
	return l.PayCallBack(body, "203.0.113.7")
}

func TestPayCallBackSuccessFlow(t *testing.T) {
	h := newCallbackEnv(t)
	h.orders.put(pendingOrder())

	resp, err := h.run(h.signedBody(t, callbackResult(constants.PLATFORM_STATUS_SUCCESS, 5000)))
	require.NoError(t, err)
	assert.Equal(t, constants.ACK_SUCCESS, resp)

	order, ok := h.orders.get("ORD001")
	require.True(t, ok)
	assert.Equal(t, constants.ORDER_STATUS_COMPLETED, order.Status)
	assert.Equal(t, "PF123", order.PlatformOrderNo)
	assert.Equal(t, int64(5000), order.PaidAmount)
	assert.Equal(t, int64(50), order.Fee)

	assert.Equal(t, constants.AUDIT_STAGE_SESSION_START, h.rows.rows[0].Stage)
	last := h.rows.last()
	assert.Equal(t, constants.AUDIT_STAGE_SESSION_END, last.Stage)
	assert.Equal(t, constants.SESSION_STATUS_VERIFIED, last.Message)
}

func TestPayCallBackReplayIsNoop(t *testing.T) {
	h := newCallbackEnv(t)
	h.orders.put(pendingOrder())
	body := h.signedBody(t, callbackResult(constants.PLATFORM_STATUS_SUCCESS, 5000))

	resp, err := h.run(body)
	require.NoError(t, err)
	require.Equal(t, constants.ACK_SUCCESS, resp)
	first, _ := h.orders.get("ORD001")

	resp, err = h.run(body)
	require.NoError(t, err)
	assert.Equal(t, constants.ACK_SUCCESS, resp)

	second, _ := h.orders.get("ORD001")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, h.orders.applies)
	assert.True(t, h.rows.has(constants.AUDIT_STAGE_DECISION, "REPLAY_NOOP"))
}

func TestPayCallBackTamperedResult(t *testing.T) {
	h := newCallbackEnv(t)
	h.orders.put(pendingOrder())

	raw, err := json.Marshal(callbackResult(constants.PLATFORM_STATUS_SUCCESS, 5000))
	require.NoError(t, err)
	sign, err := payutils.SignRSA(raw, h.priv)
	require.NoError(t, err)
	tampered := strings.Replace(string(raw), `"paid_amount":5000`, `"paid_amount":9000`, 1)
	require.NotEqual(t, string(raw), tampered)
	body, err := json.Marshal(map[string]string{
		"merchantNo": testMerchantNo,
		"result":     tampered,
		"sign":       sign,
	})
	require.NoError(t, err)

	resp, err := h.run(body)
	assert.Equal(t, constants.ACK_FAIL, resp)
	require.Error(t, err)
	assert.Equal(t, responsex.INVALID_SIGN, errorx.Code(err, ""))

	order, _ := h.orders.get("ORD001")
	assert.Equal(t, constants.ORDER_STATUS_PENDING, order.Status)
	assert.True(t, h.rows.has(constants.AUDIT_STAGE_ERROR, "SIGNATURE_INVALID"))
}

func TestPayCallBackMalformedInputs(t *testing.T) {
	h := newCallbackEnv(t)
	badInner, err := json.Marshal(map[string]string{
		"merchantNo": testMerchantNo,
		"result":     `{"code":"0000"}`,
		"sign":       mustSign(t, h.priv, `{"code":"0000"}`),
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		body []byte
		code string
	}{
		{"not json", []byte("ORD001|SUCCESS"), responsex.MALFORMED_ENVELOPE},
		{"missing sign", []byte(`{"merchantNo":"M1001","result":"{}"}`), responsex.MALFORMED_ENVELOPE},
		{"wrong merchant", []byte(`{"merchantNo":"M9999","result":"{}","sign":"AA=="}`), responsex.INVALID_MERCHANT_NO},
		{"garbage sign", []byte(`{"merchantNo":"M1001","result":"{}","sign":"not-base64!"}`), responsex.INVALID_SIGN},
		{"signed but invalid payload", badInner, responsex.MALFORMED_PAYLOAD},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCallbackEnv(t)
			h.orders.put(pendingOrder())

			resp, err := h.run(tt.body)
			assert.Equal(t, constants.ACK_FAIL, resp)
			require.Error(t, err)
			assert.Equal(t, tt.code, errorx.Code(err, ""))

			order, _ := h.orders.get("ORD001")
			assert.Equal(t, constants.ORDER_STATUS_PENDING, order.Status, "order must not move on rejected input")
			assert.GreaterOrEqual(t, h.rows.count(), 2, "rejected callback must leave an audit trail")
			assert.Equal(t, constants.AUDIT_STAGE_SESSION_END, h.rows.last().Stage)
		})
	}
}

func mustSign(t *testing.T, priv payutils.MerchantPrivateKey, content string) string {
	t.Helper()
	sign, err := payutils.SignRSA([]byte(content), priv)
	require.NoError(t, err)
	return sign
}

func TestPayCallBackUnverifiedPolicy(t *testing.T) {
	t.Run("rejected by default", func(t *testing.T) {
		h := newCallbackEnv(t)
		h.orders.put(pendingOrder())
		h.svcCtx.PlatformPublicKey = ""

		resp, err := h.run(h.signedBody(t, callbackResult(constants.PLATFORM_STATUS_SUCCESS, 5000)))
		assert.Equal(t, constants.ACK_FAIL, resp)
		require.Error(t, err)
		assert.Equal(t, responsex.UNVERIFIED_DENIED, errorx.Code(err, ""))

		order, _ := h.orders.get("ORD001")
		assert.Equal(t, constants.ORDER_STATUS_PENDING, order.Status)
	})

	t.Run("allowed when configured", func(t *testing.T) {
		h := newCallbackEnv(t)
		h.orders.put(pendingOrder())
		h.svcCtx.PlatformPublicKey = ""
		h.svcCtx.Config.Verify.AllowUnverified = true

		resp, err := h.run(h.signedBody(t, callbackResult(constants.PLATFORM_STATUS_SUCCESS, 5000)))
		require.NoError(t, err)
		assert.Equal(t, constants.ACK_SUCCESS, resp)

		order, _ := h.orders.get("ORD001")
		assert.Equal(t, constants.ORDER_STATUS_COMPLETED, order.Status)
		assert.True(t, h.rows.has(constants.AUDIT_STAGE_DECISION, "VERIFY_SKIPPED"))
		assert.Equal(t, constants.SESSION_STATUS_SKIPPED_VERIFY, h.rows.last().Message)
	})
}

func TestPayCallBackCurrencyMismatch(t *testing.T) {
	h := newCallbackEnv(t)
	h.orders.put(pendingOrder())
	result := callbackResult(constants.PLATFORM_STATUS_SUCCESS, 5000)
	result.Data.Currency = "USD"

	resp, err := h.run(h.signedBody(t, result))
	assert.Equal(t, constants.ACK_FAIL, resp)
	require.Error(t, err)
	assert.Equal(t, responsex.INVALID_CURRENCY, errorx.Code(err, ""))

	order, _ := h.orders.get("ORD001")
	assert.Equal(t, constants.ORDER_STATUS_PENDING, order.Status)
}

func TestPayCallBackReconcileTolerance(t *testing.T) {
	h := newCallbackEnv(t)
	h.orders.put(pendingOrder())
	body := h.signedBody(t, callbackResult(constants.PLATFORM_STATUS_SUCCESS, 4990))

	resp, err := h.run(body)
	assert.Equal(t, constants.ACK_FAIL, resp)
	require.Error(t, err)
	assert.Equal(t, responsex.RECONCILE_ERROR, errorx.Code(err, ""))

	h.svcCtx.Config.Reconcile.ToleranceMinor = 10
	resp, err = h.run(body)
	require.NoError(t, err)
	assert.Equal(t, constants.ACK_SUCCESS, resp)

	order, _ := h.orders.get("ORD001")
	assert.Equal(t, constants.ORDER_STATUS_COMPLETED, order.Status)
	assert.Equal(t, int64(4990), order.PaidAmount)
}

func TestPayCallBackUnknownOrder(t *testing.T) {
	body := func(h *callbackEnv) []byte {
		return h.signedBody(t, callbackResult(constants.PLATFORM_STATUS_SUCCESS, 5000))
	}

	t.Run("rejected by default", func(t *testing.T) {
		h := newCallbackEnv(t)
		resp, err := h.run(body(h))
		assert.Equal(t, constants.ACK_FAIL, resp)
		require.Error(t, err)
		assert.Equal(t, responsex.ORDER_NUMBER_NOT_EXIST, errorx.Code(err, ""))
	})

	t.Run("acked when policy allows", func(t *testing.T) {
		h := newCallbackEnv(t)
		h.svcCtx.Config.Callback.AckUnknownOrders = true
		resp, err := h.run(body(h))
		require.NoError(t, err)
		assert.Equal(t, constants.ACK_SUCCESS, resp)
		assert.True(t, h.rows.has(constants.AUDIT_STAGE_ERROR, "ORDER_NOT_FOUND"))
	})
}

func TestPayCallBackPendingAndThreeDS(t *testing.T) {
	h := newCallbackEnv(t)
	h.orders.put(pendingOrder())

	// PENDING 不落地
	resp, err := h.run(h.signedBody(t, callbackResult(constants.PLATFORM_STATUS_PENDING, 0)))
	require.NoError(t, err)
	assert.Equal(t, constants.ACK_SUCCESS, resp)
	order, _ := h.orders.get("ORD001")
	assert.Equal(t, constants.ORDER_STATUS_PENDING, order.Status)
	assert.True(t, h.rows.has(constants.AUDIT_STAGE_DECISION, "PENDING_NOOP"))

	// WAIT_3DS 记录挑战導向並转 on-hold
	wait := callbackResult(constants.PLATFORM_STATUS_WAIT_3DS, 0)
	wait.Data.RedirectUrl = "https://acs.example/challenge"
	resp, err = h.run(h.signedBody(t, wait))
	require.NoError(t, err)
	assert.Equal(t, constants.ACK_SUCCESS, resp)
	order, _ = h.orders.get("ORD001")
	assert.Equal(t, constants.ORDER_STATUS_ON_HOLD, order.Status)
	assert.Equal(t, "https://acs.example/challenge", order.ThreeDSUrl)

	// 挑战完成後 SUCCESS 可自 on-hold 收单
	resp, err = h.run(h.signedBody(t, callbackResult(constants.PLATFORM_STATUS_SUCCESS, 5000)))
	require.NoError(t, err)
	assert.Equal(t, constants.ACK_SUCCESS, resp)
	order, _ = h.orders.get("ORD001")
	assert.Equal(t, constants.ORDER_STATUS_COMPLETED, order.Status)
}

func TestPayCallBackAuditStoreFailure(t *testing.T) {
	h := newCallbackEnv(t)
	h.orders.put(pendingOrder())
	h.rows.fail = true

	resp, err := h.run(h.signedBody(t, callbackResult(constants.PLATFORM_STATUS_SUCCESS, 5000)))
	require.NoError(t, err)
	assert.Equal(t, constants.ACK_SUCCESS, resp)

	order, _ := h.orders.get("ORD001")
	assert.Equal(t, constants.ORDER_STATUS_COMPLETED, order.Status)
	assert.Greater(t, h.svcCtx.Recorder.Failures(), int64(0))
}

func TestPayCallBackConcurrentSameOrder(t *testing.T) {
	h := newCallbackEnv(t)
	h.orders.put(pendingOrder())
	body := h.signedBody(t, callbackResult(constants.PLATFORM_STATUS_SUCCESS, 5000))

	const workers = 8
	var wg sync.WaitGroup
	resps := make([]string, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resps[i], errs[i] = h.run(body)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, constants.ACK_SUCCESS, resps[i])
	}
	order, _ := h.orders.get("ORD001")
	assert.Equal(t, constants.ORDER_STATUS_COMPLETED, order.Status)
	assert.Equal(t, 1, h.orders.applies, "transition must land exactly once")
}
