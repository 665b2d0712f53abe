// Package logger builds the service's *slog.Logger and keeps attribute names
// consistent across packages.
//
// New creates a JSON or text handler configured through functional options and
// wraps it with LogHandlerDecorator, which pulls request-scoped values (request
// id, environment) out of the context on every record.
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.Production, "alquds-guide"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.ErrorContext(ctx, "failed to send reset email",
//	    logger.AccountID(acc.ID),
//	    logger.Error(err),
//	    logger.Component("account"),
//	)
//
// Middleware writes one access-log line per HTTP request.
package logger
