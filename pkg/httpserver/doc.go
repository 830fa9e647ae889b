// Package httpserver runs the HTTP listener with graceful shutdown and
// serves the liveness and readiness probes.
//
// Server wraps http.Server. Run blocks until the context is canceled or the
// process receives SIGINT/SIGTERM, then calls http.Server.Shutdown bounded by
// the shutdown timeout so in-flight uploads can finish. Lifecycle events and
// the server's internal errors go to the configured slog.Logger.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// Health exposes GET /live and GET /ready. Readiness runs every registered
// check, typically the storage backend's Ping:
//
//	health := httpserver.NewHealth(httpserver.WithPinger("storage", storage))
//	r.Mount("/health", health.Handle())
//
// Run wraps listen failures with ErrStart and Shutdown wraps drain failures
// with ErrShutdown.
package httpserver
