// Package rlog provides leveled logging over a pluggable provider, with console
// output and rolling log files configured from a flat key/value store.
//
// Features:
//   - Four leveled facades (debug, info, warn, error) in plain, formatted, lazy and error flavors
//   - Cheap level gate: suppressed entries cost neither formatting nor a provider call
//   - Lazy messages evaluated at most once, and only when the entry is written
//   - Per-writer levels, global level and per-tag levels
//   - Console writer with stdout/stderr split and optional color
//   - Rolling file writer with size and startup policies, backups, gzip and a latest.log link
//   - Pattern formats such as "{date:HH:mm:ss} | {level|min-size=5} | {message}"
//   - Runtime reconfiguration through Rebuild, with fallback to the last working setup
//   - Config files (YAML, TOML, JSON), .env files and RLOG_ environment overrides
//   - zap cores underneath, so any zapcore.Core can be attached
//
// Lixen Wraith, 2024
package rlog
