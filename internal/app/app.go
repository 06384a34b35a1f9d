// Package app wires repositories, the device client and services for the
// API server and the operator CLI.
package app

import (
	"fmt"

	"timsbridge/internal/config"
	"timsbridge/internal/database"
	"timsbridge/internal/device"
	"timsbridge/internal/logger"
	"timsbridge/internal/model"
	"timsbridge/internal/repository"
	"timsbridge/internal/service"
	"timsbridge/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Options override the collaborators that differ between the server and the CLI.
type Options struct {
	// Registerer receives the fiscal metrics. Defaults to a private registry.
	Registerer prometheus.Registerer
	// Notifier receives operator notices. Nil drops them.
	Notifier service.Notifier
}

type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Metrics *telemetry.FiscalMetrics

	Invoices  service.InvoiceService
	Setups    service.DeviceSetupService
	Responses service.FiscalResponseService
	Audit     service.AuditService
}

// New connects to the database and builds the service graph.
func New(cfg *config.Config, opts Options) (*App, error) {
	db, err := database.NewConnection(cfg.DB, logger.WithComponent("database"))
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	a := Build(cfg, db, opts)
	return a, nil
}

// Build assembles the services on an open connection.
func Build(cfg *config.Config, db *gorm.DB, opts Options) *App {
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := telemetry.NewFiscalMetrics(reg)

	invoiceRepo := repository.NewInvoiceRepository(db)
	responseRepo := repository.NewDeviceResponseRepository(db)
	setupRepo := repository.NewDeviceSetupRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	client := device.NewHTTPClient(cfg.Device.RequestTimeout, logger.WithComponent("device"))
	prober := device.TCPProber{Timeout: cfg.Device.ProbeTimeout}

	defaults := model.DeviceSetup{
		Status:          model.DeviceInactive,
		TillNumber:      cfg.Device.DefaultTillNumber,
		ETRSerialNumber: cfg.Device.DefaultSerialNumber,
	}

	setups := service.NewDeviceSetupService(setupRepo, auditRepo, txManager, prober, defaults, metrics, logger.WithComponent("device_setup"))
	submissions := service.NewSubmissionService(service.SubmissionDeps{
		Invoices:  invoiceRepo,
		Responses: responseRepo,
		Audit:     auditRepo,
		Device:    client,
		Notifier:  opts.Notifier,
		Metrics:   metrics,
		Logger:    logger.WithComponent("submission"),
		ClaimTTL:  cfg.Device.ClaimTTL,
	})
	gate := service.NewEligibilityGate(submissions, metrics, logger.WithComponent("eligibility_gate"))

	return &App{
		Config:    cfg,
		DB:        db,
		Metrics:   metrics,
		Invoices:  service.NewInvoiceService(invoiceRepo, auditRepo, txManager, setups, gate, submissions),
		Setups:    setups,
		Responses: service.NewFiscalResponseService(responseRepo),
		Audit:     service.NewAuditService(auditRepo),
	}
}

// Close releases the database pool.
func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
