// Package logging builds the slog loggers used across imagesieve.
//
// It provides a console handler for interactive use, a JSON handler for
// machine consumption, typed attribute helpers so call sites stay terse, and
// component child loggers that tag every record with the subsystem that
// produced it. Tests use NewNop to silence output.
package logging
