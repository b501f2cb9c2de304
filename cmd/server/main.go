package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/bizsuite/approval-engine/internal/application/dispatcher"
	"github.com/bizsuite/approval-engine/internal/application/service"
	"github.com/bizsuite/approval-engine/internal/config"
	"github.com/bizsuite/approval-engine/internal/export"
	httpserver "github.com/bizsuite/approval-engine/internal/interfaces/http"
	"github.com/bizsuite/approval-engine/internal/infrastructure/persistence/repository"
	"github.com/bizsuite/approval-engine/internal/infrastructure/worker"
	"github.com/bizsuite/approval-engine/pkg/database"
	"github.com/bizsuite/approval-engine/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// Load .env before viper reads the environment
	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting approval engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	approvalRepo := repository.NewApprovalRepository(db.DB, logger)

	serviceLogger := &zapLoggerAdapter{logger: logger}
	events := dispatcher.NewDispatcher(dispatcher.WithLogger(serviceLogger))
	defer events.Close()

	approvalService := service.NewApprovalService(approvalRepo, cfg.SLAEngineConfig(), events, serviceLogger)
	bulkService := service.NewBulkService(approvalService, serviceLogger)
	queryService := service.NewQueryService(approvalRepo, serviceLogger)
	exporter := export.NewExcelExporter(approvalRepo, logger)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		approvalService,
		bulkService,
		queryService,
		exporter,
		serviceLogger,
	)

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workers := worker.NewManager(logger)
	workers.Register(worker.NewSLAMonitor(approvalRepo, events, cfg.SLA.CheckInterval, logger))
	if err := workers.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}
	defer workers.StopAll()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}

	logger.Info("Approval engine stopped")
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
