package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cycle-dashboard/src/config"
	"cycle-dashboard/src/data_source/synthetic"
	"cycle-dashboard/src/grpc_render"
	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/interfaces"
	"cycle-dashboard/src/logger"
	"cycle-dashboard/src/pipeline"
	"cycle-dashboard/src/render"
	"cycle-dashboard/src/server"
)

const shutdownTimeout = 10 * time.Second

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file, .env and environment
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// 1. Setup Components
	var source interfaces.IDataSource = synthetic.NewSyntheticSource(&config.Generator)
	adapter := render.NewAdapter(render.OptionsFromConfig(config.Render), appLogger)
	chartPipeline := pipeline.NewPipeline(config.MConfig, source, adapter, appLogger)
	errorHandler := helpers.NewErrorHandler(appLogger)

	// 2. Start HTTP Server (page, websocket sessions, PNG endpoint)
	srv := server.NewDashboardServer(config.MConfig, chartPipeline, errorHandler, appLogger)
	serverErr := make(chan error, 2)
	go func() {
		if err := srv.Start(); err != nil {
			serverErr <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	// 3. Start gRPC Chart Server
	var grpcSrv *grpc_render.Server
	if config.GrpcPort > 0 {
		grpcSrv = grpc_render.NewServer(config.MConfig, chartPipeline, errorHandler, appLogger)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				serverErr <- fmt.Errorf("gRPC server: %w", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		appLogger.Info("Received %v, shutting down...", sig)
	case err := <-serverErr:
		appLogger.Error("%v", err)
		exitCode = 1
	}

	// 4. Graceful Shutdown
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if grpcSrv != nil {
		grpcSrv.Stop()
	}
	if err := srv.Stop(ctx); err != nil {
		appLogger.Error("HTTP shutdown: %v", err)
		exitCode = 1
	}

	appLogger.Info("Stopped.")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
