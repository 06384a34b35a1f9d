package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"timsbridge/internal/model"
	"timsbridge/internal/service"
	"timsbridge/internal/telemetry"
	"timsbridge/mocks"
)

type setupFixture struct {
	repo     *mocks.MockDeviceSetupRepository
	audit    *mocks.MockAuditRepository
	tx       *mocks.MockTransactionManager
	prober   *mocks.MockProber
	registry *prometheus.Registry
	defaults model.DeviceSetup
	svc      service.DeviceSetupService
}

func newSetupFixture() *setupFixture {
	f := &setupFixture{
		repo:     new(mocks.MockDeviceSetupRepository),
		audit:    new(mocks.MockAuditRepository),
		tx:       new(mocks.MockTransactionManager),
		prober:   new(mocks.MockProber),
		registry: prometheus.NewRegistry(),
		defaults: model.DeviceSetup{TillNumber: "T1", Status: model.DeviceInactive},
	}
	f.svc = service.NewDeviceSetupService(f.repo, f.audit, f.tx, f.prober, f.defaults,
		telemetry.NewFiscalMetrics(f.registry), zerolog.Nop())
	f.tx.On("RunInTx", mock.Anything).Return(nil).Maybe()
	f.audit.On("Log", mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func TestGetSetup_SeedsDefaults(t *testing.T) {
	f := newSetupFixture()
	seeded := f.defaults
	seeded.ID = uuid.New()
	f.repo.On("Get", mock.Anything, f.defaults).Return(&seeded, nil)

	got, err := f.svc.GetSetup(context.Background())

	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)
	assert.Equal(t, "T1", got.TillNumber)
}

func TestUpdateSetup_PatchesOnlyGivenFields(t *testing.T) {
	f := newSetupFixture()
	current := activeSetup()
	f.repo.On("Get", mock.Anything, f.defaults).Return(&current, nil)

	var saved *model.DeviceSetup
	f.repo.On("Save", mock.Anything, mock.MatchedBy(func(s *model.DeviceSetup) bool {
		saved = s
		return true
	})).Return(nil)

	port := 9000
	allow := true
	got, err := f.svc.UpdateSetup(context.Background(), service.UpdateDeviceSetupRequest{
		Port:                     &port,
		AllowSubmissionOnFailure: &allow,
	}, "jane")

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 9000, got.Port)
	assert.True(t, got.AllowSubmissionOnFailure)
	assert.Equal(t, "10.0.0.5", got.IP)
	assert.True(t, got.SendInvoicesOnSubmit)
	assert.Equal(t, model.DeviceActive, got.Status)
	f.audit.AssertCalled(t, "Log", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
		return l.Action == model.ActionUpdateDeviceSetup && l.Actor == "jane"
	}))
}

func TestUpdateSetup_SaveFails(t *testing.T) {
	f := newSetupFixture()
	current := activeSetup()
	f.repo.On("Get", mock.Anything, f.defaults).Return(&current, nil)
	f.repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("constraint violation"))

	_, err := f.svc.UpdateSetup(context.Background(), service.UpdateDeviceSetupRequest{}, "jane")

	assert.Error(t, err)
	f.audit.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
}

func TestTestConnection(t *testing.T) {
	t.Run("reachable device becomes active", func(t *testing.T) {
		f := newSetupFixture()
		id := uuid.New()
		f.prober.On("Probe", mock.Anything, "192.168.1.20:8086").Return(nil)
		f.repo.On("UpdateStatus", mock.Anything, id, model.DeviceActive).Return(nil)

		res, err := f.svc.TestConnection(context.Background(), service.TestConnectionRequest{
			IP: "192.168.1.20", Port: 8086, SetupID: id.String(),
		}, "jane")

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "Connection successful", res.Message)
		assert.Equal(t, model.DeviceActive, res.Status)
		assert.Equal(t, 1.0, counterValue(t, f.registry, "tims_device_probes_total", map[string]string{"status": model.DeviceActive}))
		f.repo.AssertExpectations(t)
	})

	t.Run("unreachable device becomes inactive", func(t *testing.T) {
		f := newSetupFixture()
		id := uuid.New()
		f.prober.On("Probe", mock.Anything, "192.168.1.20:8086").Return(errors.New("dial tcp: connection refused"))
		f.repo.On("UpdateStatus", mock.Anything, id, model.DeviceInactive).Return(nil)

		res, err := f.svc.TestConnection(context.Background(), service.TestConnectionRequest{
			IP: "192.168.1.20", Port: 8086, SetupID: id.String(),
		}, "jane")

		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "dial tcp: connection refused", res.Error)
		assert.Equal(t, model.DeviceInactive, res.Status)
		f.repo.AssertExpectations(t)
	})

	t.Run("falls back to stored setup id", func(t *testing.T) {
		f := newSetupFixture()
		current := activeSetup()
		f.repo.On("Get", mock.Anything, f.defaults).Return(&current, nil)
		f.prober.On("Probe", mock.Anything, "[fe80::1]:8086").Return(nil)
		f.repo.On("UpdateStatus", mock.Anything, current.ID, model.DeviceActive).Return(nil)

		res, err := f.svc.TestConnection(context.Background(), service.TestConnectionRequest{IP: "fe80::1", Port: 8086}, "")

		require.NoError(t, err)
		assert.True(t, res.Success)
		f.repo.AssertExpectations(t)
	})

	t.Run("unknown setup id", func(t *testing.T) {
		f := newSetupFixture()
		id := uuid.New()
		f.prober.On("Probe", mock.Anything, mock.Anything).Return(nil)
		f.repo.On("UpdateStatus", mock.Anything, id, model.DeviceActive).Return(gorm.ErrRecordNotFound)

		_, err := f.svc.TestConnection(context.Background(), service.TestConnectionRequest{
			IP: "192.168.1.20", Port: 8086, SetupID: id.String(),
		}, "jane")

		assert.ErrorIs(t, err, service.ErrDeviceSetupNotFound)
	})

	t.Run("malformed setup id", func(t *testing.T) {
		f := newSetupFixture()

		_, err := f.svc.TestConnection(context.Background(), service.TestConnectionRequest{
			IP: "192.168.1.20", Port: 8086, SetupID: "TIMS Device Setup",
		}, "jane")

		assert.Error(t, err)
		f.prober.AssertNotCalled(t, "Probe", mock.Anything, mock.Anything)
	})
}
