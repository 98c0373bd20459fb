// Package orchestrators coordinates workflows across domain services and adapters.
package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rcrowley/go-metrics"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/interfaces"
	"github.com/ochairo/certdesc/internal/domain/interfaces/gateways"
	"github.com/ochairo/certdesc/internal/domain/interfaces/repositories"
	"github.com/ochairo/certdesc/internal/domain/interfaces/services"
	"github.com/ochairo/certdesc/internal/domain/services/checks"
)

// Metric names registered by the orchestrator
const (
	MetricDescribed    = "certdesc.described"
	MetricObservations = "certdesc.observations"
	MetricFailures     = "certdesc.failures"
	MetricDescribe     = "certdesc.describe"
)

var (
	// ErrNoRepository is returned by store operations when no repository is configured
	ErrNoRepository = errors.New("no description repository configured")

	// ErrInvalidCertificate wraps parser errors
	ErrInvalidCertificate = errors.New("invalid certificate")
)

// FileLister lists the certificate files of a directory
type FileLister interface {
	ListFiles(dir string) ([]string, error)
}

// DescriptionOrchestrator runs parse, checks, build and store for certificates
type DescriptionOrchestrator struct {
	parser  gateways.CertificateParser
	lister  FileLister
	builder services.DescriptionService
	repo    repositories.DescriptionRepository
	checks  []services.Check
	logger  interfaces.Logger

	described    metrics.Counter
	observations metrics.Counter
	failures     metrics.Counter
	timer        metrics.Timer
}

// DescriptionOrchestratorConfig holds optional collaborators
type DescriptionOrchestratorConfig struct {
	// Checks run in order on every certificate. Nil runs the default battery.
	Checks []services.Check

	// Registry receives the orchestrator metrics. Nil uses a private registry.
	Registry metrics.Registry

	Logger interfaces.Logger
}

// NewDescriptionOrchestrator creates a new description orchestrator.
// repo may be nil when descriptions are never stored.
func NewDescriptionOrchestrator(
	parser gateways.CertificateParser,
	lister FileLister,
	builder services.DescriptionService,
	repo repositories.DescriptionRepository,
	config DescriptionOrchestratorConfig,
) *DescriptionOrchestrator {
	checkList := config.Checks
	if checkList == nil {
		checkList = checks.Default()
	}

	registry := config.Registry
	if registry == nil {
		registry = metrics.NewRegistry()
	}

	logger := config.Logger
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &DescriptionOrchestrator{
		parser:       parser,
		lister:       lister,
		builder:      builder,
		repo:         repo,
		checks:       checkList,
		logger:       logger,
		described:    metrics.GetOrRegisterCounter(MetricDescribed, registry),
		observations: metrics.GetOrRegisterCounter(MetricObservations, registry),
		failures:     metrics.GetOrRegisterCounter(MetricFailures, registry),
		timer:        metrics.GetOrRegisterTimer(MetricDescribe, registry),
	}
}

// Checks returns the names of the configured checks in run order
func (o *DescriptionOrchestrator) Checks() []string {
	return checks.Names(o.checks)
}

// Describe parses data (DER or PEM), runs the checks and builds the description
func (o *DescriptionOrchestrator) Describe(ctx context.Context, data []byte) (*entities.CertificateDescription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	desc, err := o.describe(data)
	o.timer.UpdateSince(start)
	if err != nil {
		o.failures.Inc(1)
		return nil, err
	}

	o.described.Inc(1)
	o.observations.Inc(int64(len(desc.Observations)))
	o.logger.Debug("Certificate described",
		interfaces.F("serial", desc.SerialNumber),
		interfaces.F("observations", len(desc.Observations)))
	return desc, nil
}

func (o *DescriptionOrchestrator) describe(data []byte) (*entities.CertificateDescription, error) {
	cert, err := o.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCertificate, err)
	}

	observations, err := checks.Run(cert, o.checks)
	if err != nil {
		return nil, err
	}

	desc, err := o.builder.FromCert(cert, observations)
	if err != nil {
		return nil, fmt.Errorf("failed to build description: %w", err)
	}
	return desc, nil
}

// DescribeAndStore describes data and saves the result, returning the fingerprint
func (o *DescriptionOrchestrator) DescribeAndStore(ctx context.Context, data []byte) (*entities.CertificateDescription, string, error) {
	if o.repo == nil {
		return nil, "", ErrNoRepository
	}

	desc, err := o.Describe(ctx, data)
	if err != nil {
		return nil, "", err
	}

	fp, err := o.repo.Save(ctx, desc)
	if err != nil {
		o.failures.Inc(1)
		return nil, "", fmt.Errorf("failed to store description: %w", err)
	}
	return desc, fp, nil
}

// ImportSummary contains the result of a directory import
type ImportSummary struct {
	Files        int
	Stored       int
	Observations int
	Failed       map[string]error
	Duration     time.Duration
}

// GetSummary returns a human-readable summary of the import
func (s *ImportSummary) GetSummary() string {
	summary := fmt.Sprintf("Imported %d of %d certificate files in %s",
		s.Stored, s.Files, s.Duration.Round(time.Millisecond))
	if s.Observations > 0 {
		summary += fmt.Sprintf(", %d observations", s.Observations)
	}
	if len(s.Failed) > 0 {
		summary += fmt.Sprintf(", %d failed", len(s.Failed))
	}
	return summary
}

// ImportDir describes and stores every certificate file in dir. A file that
// fails is recorded in the summary and does not stop the import; a canceled
// context does.
func (o *DescriptionOrchestrator) ImportDir(ctx context.Context, dir string) (*ImportSummary, error) {
	if o.repo == nil {
		return nil, ErrNoRepository
	}
	if o.lister == nil {
		return nil, fmt.Errorf("no file lister configured")
	}

	start := time.Now()
	files, err := o.lister.ListFiles(dir)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{
		Files:  len(files),
		Failed: make(map[string]error),
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}

		//nolint:gosec // G304: file comes from the listed import directory
		data, err := os.ReadFile(file)
		if err != nil {
			o.failures.Inc(1)
			summary.Failed[file] = fmt.Errorf("failed to read file: %w", err)
			o.logger.Warn("Skipping certificate file", interfaces.F("file", file), interfaces.Err(err))
			continue
		}

		desc, fp, err := o.DescribeAndStore(ctx, data)
		if err != nil {
			summary.Failed[file] = err
			o.logger.Warn("Skipping certificate file", interfaces.F("file", file), interfaces.Err(err))
			continue
		}

		summary.Stored++
		summary.Observations += len(desc.Observations)
		o.logger.Info("Certificate imported",
			interfaces.F("file", file),
			interfaces.F("fingerprint", fp))
	}

	summary.Duration = time.Since(start)
	return summary, nil
}
