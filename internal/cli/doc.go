// Parses flags and configures logging for the kvsship pipeline.
//
// The tool accepts the following global flags:
//
//	-q, --quiet    Suppress informational output.
//	-d, --debug    Enable debug output.
//	-c, --config   Pipeline config file path.
//
// Subcommands: push (run the pipeline), render (print the effective
// Dockerfile), version. Flags override build-time defaults set via linker
// flags; after parsing, the global logger is reconfigured to reflect the
// final level before any stage runs.
package cli
