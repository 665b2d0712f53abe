// Package httpserver runs an http.Handler with configured timeouts and a
// graceful shutdown bound to the context passed to Run.
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Health returns a readiness handler that runs named dependency checks.
package httpserver
