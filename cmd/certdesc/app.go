package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rcrowley/go-metrics"

	orchestrators "github.com/ochairo/certdesc/internal/domain-orchestrators"
	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/interfaces"
	"github.com/ochairo/certdesc/internal/domain/services"
	"github.com/ochairo/certdesc/internal/domain/services/checks"
	"github.com/ochairo/certdesc/internal/external-adapters/gpg"
	"github.com/ochairo/certdesc/internal/external-adapters/logging"
	"github.com/ochairo/certdesc/internal/external-adapters/sqlite"
	"github.com/ochairo/certdesc/internal/external-adapters/x509cert"
	"github.com/ochairo/certdesc/internal/external-adapters/yaml"
)

// app wires the adapters selected by the configuration
type app struct {
	config   *entities.Config
	logger   interfaces.Logger
	registry metrics.Registry
	store    *sqlite.Store
	orch     *orchestrators.DescriptionOrchestrator
}

// newApp loads the configuration and builds the orchestrator. The store is
// opened only when withStore is set.
func newApp(configPath string, withStore bool, logOut io.Writer) (*app, error) {
	cfg, err := yaml.NewConfigLoader().Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogrusLogger(cfg.LogLevel, logOut)
	if err != nil {
		return nil, err
	}

	a := &app{
		config:   cfg,
		logger:   logger,
		registry: metrics.NewRegistry(),
	}

	if withStore {
		store, err := sqlite.Open(cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	parser := x509cert.NewParser(logger)
	orchConfig := orchestrators.DescriptionOrchestratorConfig{
		Checks:   checks.Select(checks.Default(), cfg.Checks.Disabled),
		Registry: a.registry,
		Logger:   logger,
	}

	if a.store != nil {
		a.orch = orchestrators.NewDescriptionOrchestrator(parser, parser, services.NewDescriptionService(), a.store, orchConfig)
	} else {
		a.orch = orchestrators.NewDescriptionOrchestrator(parser, parser, services.NewDescriptionService(), nil, orchConfig)
	}

	return a, nil
}

// signer loads the signing key, falling back to the configured key file
func (a *app) signer(keyFile string) (*gpg.Signer, error) {
	if keyFile == "" {
		keyFile = a.config.Signing.KeyFile
	}
	if keyFile == "" {
		return nil, fmt.Errorf("no signing key given (use --key or signing.key_file)")
	}

	var passphrase []byte
	if env := a.config.Signing.PassphraseEnv; env != "" {
		passphrase = []byte(os.Getenv(env))
	}
	return gpg.NewSignerFromFile(keyFile, passphrase)
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Failed to close database", interfaces.Err(err))
		}
	}
}
