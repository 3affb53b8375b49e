/*
Package log provides structured logging for luminad built on zerolog.

Call Init once at startup, then either use the package-level helpers for
one-off messages or create component-scoped child loggers:

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	logger := log.WithComponent("scheduler")
	logger.Info().Int("matches", 2).Msg("check pass complete")

The daemon defaults to JSON output; the console writer is used for
interactive tooling.
*/
package log
