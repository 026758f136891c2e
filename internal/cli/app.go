package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/carbonaccess/plategate/internal/config"
	"github.com/carbonaccess/plategate/internal/db"
	"github.com/carbonaccess/plategate/internal/logger"
	"github.com/carbonaccess/plategate/internal/plategate/ocr"
	"github.com/carbonaccess/plategate/internal/plategate/plate"
	"github.com/carbonaccess/plategate/internal/plategate/service"
	sqlitestore "github.com/carbonaccess/plategate/internal/plategate/store/sqlite"
)

// App is the state shared by every subcommand: configuration and logger,
// loaded once before the command runs.
type App struct {
	configPath string

	cfg       config.Config
	log       *slog.Logger
	logCloser io.Closer
}

func (a *App) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, closer, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg, a.log, a.logCloser = cfg, log, closer
	return nil
}

func (a *App) close() error {
	if a.logCloser != nil {
		return a.logCloser.Close()
	}
	return nil
}

// services is one opened registry with the services built on top of it.
type services struct {
	db       *sql.DB
	writer   *db.Worker
	registry *service.RegistryService
	access   *service.AccessService
	reports  *service.ReportService

	closers []io.Closer
}

func (s *services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	s.writer.Close()
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}

// open opens the registry database and wires the services. The OCR engine
// is only built when withEngine is set, so commands that never read images
// work without one.
func (a *App) open(ctx context.Context, withEngine bool) (*services, error) {
	conn, err := db.Open(ctx, a.cfg.DatabaseOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	writer := db.NewWorker(conn)

	s := &services{db: conn, writer: writer}

	employees := sqlitestore.NewEmployeeStore(conn, writer)
	vehicles := sqlitestore.NewVehicleStore(conn, writer)
	events := sqlitestore.NewAccessEventStore(conn, writer)

	pipeline := service.Pipeline{
		Preprocess: a.cfg.VisionOptions(),
		Extractor:  plate.Extractor{RankByConfidence: a.cfg.Plate.RankByConfidence},
	}
	if withEngine {
		engine, closer, err := ocr.New(ctx, a.cfg.OCROptions())
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to start ocr engine: %w", err)
		}
		pipeline.Engine = engine
		s.closers = append(s.closers, closer)
	}

	s.registry = service.NewRegistryService(employees, vehicles, a.log)
	s.access = service.NewAccessService(
		s.registry,
		events,
		service.AccessPolicy{LogUnregistered: a.cfg.Access.LogUnregistered},
		pipeline,
		a.log,
	)
	s.reports = service.NewReportService(events)
	return s, nil
}
