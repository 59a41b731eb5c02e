package sentry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flexprice/paycycle/internal/config"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/stretchr/testify/assert"
	"go.uber.org/fx/fxtest"
)

func newDisabledService() *Service {
	cfg := config.GetDefaultConfig()
	cfg.Sentry.Enabled = false
	return NewSentryService(cfg, logger.NewNoopLogger())
}

func TestDisabledServiceIsNoop(t *testing.T) {
	svc := newDisabledService()

	assert.False(t, svc.IsEnabled())
	assert.True(t, svc.Flush(time.Millisecond))

	svc.CaptureExceptionWithTags(errors.New("boom"), map[string]string{"subscription_id": "sub_1"})
	svc.CaptureAlert("payment needs review", map[string]string{"payment_id": "pay_1"})
	svc.AddBreadcrumb("aging", "step", nil)

	span, ctx := svc.StartDBSpan(context.Background(), "db.payments.get", nil)
	assert.Nil(t, span)
	assert.NotNil(t, ctx)
}

func TestRegisterHooksFlushesOnStop(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	RegisterHooks(lc, newDisabledService())

	lc.RequireStart().RequireStop()
}
