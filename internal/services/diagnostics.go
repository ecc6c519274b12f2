package services

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/persondb/internal/config"
	"github.com/localnerve/persondb/internal/database"
	"github.com/localnerve/persondb/internal/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// DefaultTCPTimeout bounds the TCP reachability probe
const DefaultTCPTimeout = 5 * time.Second

// Step statuses
const (
	StepOK      = "ok"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

var errStepSkipped = errors.New("skipped")

// Resolver looks up host addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// StepResult is the outcome of a single diagnostics step
type StepResult struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// DiagnosticsReport collects what one diagnostics run found
type DiagnosticsReport struct {
	RunID        string       `json:"runId"`
	Host         string       `json:"host"`
	Port         string       `json:"port"`
	Address      string       `json:"address,omitempty"`
	Reachable    bool         `json:"reachable"`
	DatabaseTime interface{}  `json:"databaseTime,omitempty"`
	Steps        []StepResult `json:"steps"`
}

// Healthy reports whether no step failed
func (r *DiagnosticsReport) Healthy() bool {
	for _, step := range r.Steps {
		if step.Status == StepFailed {
			return false
		}
	}
	return true
}

type diagnosticStep struct {
	name string
	run  func(ctx context.Context, report *DiagnosticsReport) error
}

// Diagnostics probes the configured database host: DNS, then TCP, then a
// liveness query through the pool. Each step runs in its own failure
// boundary, so a failing step never stops the ones after it.
type Diagnostics struct {
	Host       string
	Port       string
	DB         *gorm.DB
	Logger     *log.Logger
	Resolver   Resolver
	Dialer     utils.Dialer
	TCPTimeout time.Duration
}

// NewDiagnostics creates a runner for the database named by cfg
func NewDiagnostics(cfg *config.Config, db *gorm.DB, logger *log.Logger) *Diagnostics {
	if logger == nil {
		logger = log.Default()
	}
	return &Diagnostics{
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		DB:         db,
		Logger:     logger,
		Resolver:   net.DefaultResolver,
		Dialer:     &net.Dialer{},
		TCPTimeout: DefaultTCPTimeout,
	}
}

// Run executes every step in order and returns what was found.
// All outcomes are also written to the logger.
func (d *Diagnostics) Run(ctx context.Context) *DiagnosticsReport {
	report := &DiagnosticsReport{
		RunID: uuid.NewString(),
		Host:  d.Host,
		Port:  d.Port,
	}

	d.logf(report, "Running diagnostics...")

	steps := []diagnosticStep{
		{name: "dns", run: d.lookupHost},
		{name: "tcp", run: d.probeTCP},
		{name: "database", run: d.queryDatabase},
	}
	for _, step := range steps {
		report.Steps = append(report.Steps, d.runStep(ctx, step, report))
	}

	return report
}

func (d *Diagnostics) runStep(ctx context.Context, step diagnosticStep, report *DiagnosticsReport) (result StepResult) {
	result.Name = step.name
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			result.Status = StepFailed
			result.Error = fmt.Sprintf("panic: %v", p)
			d.logf(report, "Diagnostics step %s panicked: %v", step.name, p)
		}
		result.Duration = time.Since(start).String()
	}()

	err := step.run(ctx, report)
	switch {
	case err == nil:
		result.Status = StepOK
	case errors.Is(err, errStepSkipped):
		result.Status = StepSkipped
	default:
		result.Status = StepFailed
		result.Error = err.Error()
	}

	return result
}

func (d *Diagnostics) lookupHost(ctx context.Context, report *DiagnosticsReport) error {
	addresses, err := d.Resolver.LookupHost(ctx, d.Host)
	if err == nil && len(addresses) == 0 {
		err = fmt.Errorf("no addresses for %s", d.Host)
	}
	if err != nil {
		d.logf(report, "DNS lookup failed for %s: %v", d.Host, err)
		return err
	}

	report.Address = addresses[0]
	d.logf(report, "DNS lookup for %s: %s", d.Host, report.Address)
	return nil
}

func (d *Diagnostics) probeTCP(ctx context.Context, report *DiagnosticsReport) error {
	if report.Address == "" {
		return errStepSkipped
	}

	target := net.JoinHostPort(report.Address, d.Port)
	if err := utils.PingAddress(ctx, d.Dialer, report.Address, d.Port, d.TCPTimeout); err != nil {
		if errors.Is(err, utils.ErrPingTimeout) {
			d.logf(report, "TCP connection to %s timed out", target)
		} else {
			d.logf(report, "TCP connection to %s failed: %v", target, err)
		}
		d.logf(report, "TCP connection test failed: %v", err)
		return err
	}

	report.Reachable = true
	d.logf(report, "TCP connection to %s successful", target)
	return nil
}

func (d *Diagnostics) queryDatabase(ctx context.Context, report *DiagnosticsReport) error {
	d.logf(report, "Attempting to connect to the database...")

	// Connection checks out one pooled connection and returns it when done
	err := d.DB.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		d.logf(report, "Successfully connected to the database.")

		var row map[string]interface{}
		if err := tx.Raw(database.LivenessQuery(tx)).Scan(&row).Error; err != nil {
			return err
		}

		report.DatabaseTime = row["now"]
		d.logf(report, "Database query successful. Current timestamp: %v", report.DatabaseTime)
		return nil
	})
	if err != nil {
		d.logf(report, "Error connecting to database: %v", err)
		return err
	}

	return nil
}

func (d *Diagnostics) logf(report *DiagnosticsReport, format string, args ...interface{}) {
	d.Logger.Printf("[diagnostics %s] "+format, append([]interface{}{report.RunID}, args...)...)
}
