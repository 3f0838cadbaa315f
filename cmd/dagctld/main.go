// Command dagctld starts the workflow scheduler's HTTP API server.
//
// Usage:
//
//	dagctld [flags]
//
// Flags:
//
//	-addr string
//	    Server address (default ":8080")
//	-read-timeout duration
//	    HTTP read timeout (default 30s)
//	-write-timeout duration
//	    HTTP write timeout (default 30s)
//	-max-slots int
//	    Total abstract resource budget for simultaneously submitted tasks (default 16)
//	-max-concurrency int
//	    Maximum number of simultaneously alive workers (default 16)
//	-exit-on-failure
//	    Abort a refresh as soon as any task fails (default true)
//
// Example:
//
//	# Start server on default port
//	dagctld
//
//	# Start server on custom port with a tighter slot budget
//	dagctld -addr :9090 -max-slots 4 -max-concurrency 4
//
// The server exposes the following endpoints:
//
//	POST   /api/v1/workflow/execute        - Build and run a definition
//	POST   /api/v1/workflow/validate       - Validate a definition against the schema
//	POST   /api/v1/workflow/save           - Save a definition
//	GET    /api/v1/workflow/list           - List all saved definitions
//	GET    /api/v1/workflow/load/{id}      - Load a definition by ID
//	DELETE /api/v1/workflow/delete/{id}    - Delete a definition by ID
//	POST   /api/v1/workflow/execute/{id}   - Execute a saved definition by ID
//	GET    /api/v1/workflow/graph/{id}     - Render a saved definition's DAG as GraphViz DOT
//	GET    /health                         - Health check
//	GET    /health/live                    - Liveness probe
//	GET    /health/ready                   - Readiness probe
//	GET    /metrics                        - Prometheus metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowbase/dagctl/pkg/config"
	"github.com/flowbase/dagctl/pkg/server"
)

func main() {
	addr := flag.String("addr", ":8080", "Server address")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	maxSlots := flag.Int("max-slots", 16, "Total abstract resource budget for simultaneously submitted tasks")
	maxConcurrency := flag.Int("max-concurrency", 16, "Maximum number of simultaneously alive workers")
	exitOnFailure := flag.Bool("exit-on-failure", true, "Abort a refresh as soon as any task fails")

	flag.Parse()

	serverConfig := server.Config{
		Address:            *addr,
		ReadTimeout:        *readTimeout,
		WriteTimeout:       *writeTimeout,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024, // 10MB
		EnableCORS:         true,
	}

	schedulerConfig := config.Default()
	schedulerConfig.MaxSlots = *maxSlots
	schedulerConfig.MaxConcurrency = *maxConcurrency
	schedulerConfig.ExitOnFailure = *exitOnFailure

	srv, err := server.New(serverConfig, schedulerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create server: %v\n", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		fmt.Printf("Starting dagctl scheduler server on %s\n", *addr)
		fmt.Printf("Health check:     http://localhost%s/health\n", *addr)
		fmt.Printf("Liveness probe:   http://localhost%s/health/live\n", *addr)
		fmt.Printf("Readiness probe:  http://localhost%s/health/ready\n", *addr)
		fmt.Printf("Metrics:          http://localhost%s/metrics\n", *addr)
		fmt.Printf("API endpoint:     http://localhost%s/api/v1/workflow/execute\n", *addr)
		fmt.Println("\nPress Ctrl+C to shutdown")

		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)
		fmt.Println("Shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Server stopped")
	}
}
