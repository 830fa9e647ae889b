// Package logger builds the service's *slog.Logger.
//
// New takes functional options to pick the output format and level, attach
// static attributes, fan records out to an additional JSON sink (via
// github.com/samber/slog-multi) and register ContextExtractor callbacks that
// inject request-scoped values such as the request id on every record.
//
// Attribute helpers in attr.go (Filename, Directory, StoredPath, Size, ...) keep
// key names consistent across the ingestion pipeline, the HTTP layer and the CLI.
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.Parse(cfg.Env), "docvault"),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "file saved", logger.Filename("report.pdf"), logger.Size(1024))
package logger
