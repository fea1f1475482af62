// Package log provides the logging abstraction used across appendlog
// components.
//
// The Logger interface decouples the library from any concrete logging
// backend. A zerolog adapter is provided for applications, and a no-op
// logger is the default so the hot paths of an embedded log stay silent
// unless the caller opts in.
//
// # Usage
//
// Wrap an existing zerolog logger:
//
//	logger := log.NewZerologLogger(zerolog.New(os.Stderr))
//
// Or use console output with timestamps:
//
//	logger := log.NewConsoleLogger()
//
// Implement the Logger interface to integrate any other backend.
package log
