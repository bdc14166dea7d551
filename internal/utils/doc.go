// Package utils exposes reusable helpers consumed by the CLI commands.
//
// It houses the Viper-backed ConfigurationLoader, the zap LoggerFactory, the
// CommandContextAccessor that carries configuration metadata through cobra
// contexts, and a FlushingWriter for command output.
package utils
