// Package registry models the remote image registry and its authentication.
//
// A Target names the remote image slot (account, region, repository, tag)
// and assembles the stable registry address the rest of the pipeline and any
// orchestration tooling refer to. The Authenticator exchanges ambient AWS
// credentials for a short-lived ECR session credential scoped to push and
// pull on the target repository.
//
// Credentials are minted immediately before use and never cached or written
// to disk. Every pipeline invocation re-authenticates.
package registry
