package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"

	"timsbridge/internal/device"
	"timsbridge/internal/model"
	"timsbridge/internal/repository"
	"timsbridge/internal/telemetry"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var ErrDeviceSetupNotFound = errors.New("device setup not found")

// --- DTOs ---

// UpdateDeviceSetupRequest patches the device setup. Nil fields are left as is.
type UpdateDeviceSetupRequest struct {
	IP                       *string `json:"ip"`
	Port                     *int    `json:"port" binding:"omitempty,min=1,max=65535"`
	SendInvoicesOnSubmit     *bool   `json:"send_invoices_on_submit"`
	SendCreditNotes          *bool   `json:"send_credit_notes"`
	AllowSubmissionOnFailure *bool   `json:"allow_submission_on_failure"`
	AllowOtherDayPosting     *bool   `json:"allow_other_day_posting"`
	TillNumber               *string `json:"till_number"`
	ETRSerialNumber          *string `json:"etr_serial_number"`
}

type TestConnectionRequest struct {
	IP      string `json:"ip" binding:"required"`
	Port    int    `json:"port" binding:"required,min=1,max=65535"`
	SetupID string `json:"name"`
}

// ProbeResult mirrors what the setup screen expects back from a connection test.
type ProbeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Status  string `json:"status"`
}

// --- Interface ---

type DeviceSetupService interface {
	GetSetup(ctx context.Context) (*model.DeviceSetup, error)
	UpdateSetup(ctx context.Context, req UpdateDeviceSetupRequest, actor string) (*model.DeviceSetup, error)
	TestConnection(ctx context.Context, req TestConnectionRequest, actor string) (ProbeResult, error)
}

type deviceSetupService struct {
	setupRepo repository.DeviceSetupRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	prober    device.Prober
	defaults  model.DeviceSetup
	metrics   *telemetry.FiscalMetrics
	logger    zerolog.Logger
}

// NewDeviceSetupService returns the setup service. defaults seeds the row the
// first time the setup is read.
func NewDeviceSetupService(
	setupRepo repository.DeviceSetupRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	prober device.Prober,
	defaults model.DeviceSetup,
	metrics *telemetry.FiscalMetrics,
	logger zerolog.Logger,
) DeviceSetupService {
	if defaults.Status == "" {
		defaults.Status = model.DeviceInactive
	}
	return &deviceSetupService{
		setupRepo: setupRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		prober:    prober,
		defaults:  defaults,
		metrics:   metrics,
		logger:    logger,
	}
}

// --- Implementation ---

func (s *deviceSetupService) GetSetup(ctx context.Context) (*model.DeviceSetup, error) {
	setup, err := s.setupRepo.Get(ctx, s.defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to load device setup: %w", err)
	}
	return setup, nil
}

func (s *deviceSetupService) UpdateSetup(ctx context.Context, req UpdateDeviceSetupRequest, actor string) (*model.DeviceSetup, error) {
	var updated *model.DeviceSetup

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		setup, err := s.setupRepo.Get(txCtx, s.defaults)
		if err != nil {
			return fmt.Errorf("failed to load device setup: %w", err)
		}

		applySetupPatch(setup, req)

		if err := s.setupRepo.Save(txCtx, setup); err != nil {
			return fmt.Errorf("failed to save device setup: %w", err)
		}

		details, _ := json.Marshal(req)
		if err := s.auditRepo.Log(txCtx, &model.AuditLog{
			Actor:      actorOrSystem(actor),
			Action:     model.ActionUpdateDeviceSetup,
			EntityID:   setup.ID.String(),
			EntityName: "TIMS Device Setup",
			Details:    string(details),
		}); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		updated = setup
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("device_addr", updated.Address()).Msg("device setup updated")
	return updated, nil
}

// TestConnection dials the device and stores the resulting status on the
// setup row. A failed dial is reported in the result, not as an error.
func (s *deviceSetupService) TestConnection(ctx context.Context, req TestConnectionRequest, actor string) (ProbeResult, error) {
	setupID, err := s.resolveSetupID(ctx, req.SetupID)
	if err != nil {
		return ProbeResult{}, err
	}

	addr := net.JoinHostPort(req.IP, strconv.Itoa(req.Port))
	probeErr := s.prober.Probe(ctx, addr)

	result := ProbeResult{Success: true, Message: "Connection successful", Status: model.DeviceActive}
	if probeErr != nil {
		result = ProbeResult{Success: false, Error: probeErr.Error(), Status: model.DeviceInactive}
		s.logger.Error().Err(probeErr).
			Str("ip", req.IP).
			Int("port", req.Port).
			Msgf("TIMS Device Connection Test Error: %v\nIP: %s, Port: %d", probeErr, req.IP, req.Port)
	}

	if err := s.setupRepo.UpdateStatus(ctx, setupID, result.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProbeResult{}, ErrDeviceSetupNotFound
		}
		return ProbeResult{}, fmt.Errorf("failed to update device status: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ProbeResults.WithLabelValues(result.Status).Inc()
	}

	details, _ := json.Marshal(map[string]interface{}{"ip": req.IP, "port": req.Port, "status": result.Status, "error": result.Error})
	if err := s.auditRepo.Log(ctx, &model.AuditLog{
		Actor:      actorOrSystem(actor),
		Action:     model.ActionProbeDevice,
		EntityID:   setupID.String(),
		EntityName: "TIMS Device Setup",
		Details:    string(details),
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}

	return result, nil
}

// --- Helpers ---

func (s *deviceSetupService) resolveSetupID(ctx context.Context, raw string) (uuid.UUID, error) {
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid device setup id: %w", err)
		}
		return id, nil
	}
	setup, err := s.GetSetup(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return setup.ID, nil
}

func applySetupPatch(setup *model.DeviceSetup, req UpdateDeviceSetupRequest) {
	if req.IP != nil {
		setup.IP = *req.IP
	}
	if req.Port != nil {
		setup.Port = *req.Port
	}
	if req.SendInvoicesOnSubmit != nil {
		setup.SendInvoicesOnSubmit = *req.SendInvoicesOnSubmit
	}
	if req.SendCreditNotes != nil {
		setup.SendCreditNotes = *req.SendCreditNotes
	}
	if req.AllowSubmissionOnFailure != nil {
		setup.AllowSubmissionOnFailure = *req.AllowSubmissionOnFailure
	}
	if req.AllowOtherDayPosting != nil {
		setup.AllowOtherDayPosting = *req.AllowOtherDayPosting
	}
	if req.TillNumber != nil {
		setup.TillNumber = *req.TillNumber
	}
	if req.ETRSerialNumber != nil {
		setup.ETRSerialNumber = *req.ETRSerialNumber
	}
}
