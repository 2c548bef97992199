// Package pipeline orchestrates the build-and-publish run.
//
// The driver walks a strictly sequential state machine, Idle through
// Authenticating, Building, and Publishing to Done, with a terminal Failed
// state reachable from any stage. Each stage depends on the previous one's
// output: the credential feeds the push and the artifact must exist before
// it can be uploaded, so there is nothing to parallelize at this level
// (platform-level concurrency lives inside the builder). No stage swallows
// or retries errors; the first failure halts the run and the operator or an
// external orchestrator re-invokes the pipeline.
//
// The package also owns the pipeline's fixed YAML configuration, which maps
// onto the registry target and build description consumed by Run.
package pipeline
