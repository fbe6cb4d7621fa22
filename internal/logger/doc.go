// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger writing to stderr with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Diagnostics always go to stderr; command output on stdout stays clean for
// scripting. All services accept a context and extract the logger from it,
// enabling scoped, structured logging throughout the codebase.
package logger
