package registry

import (
	"fmt"
	"regexp"
)

// Identifies the remote image a pipeline run publishes.
//
// A target fully determines a unique registry address. All four fields must
// be non-empty and syntactically valid; Validate enforces this before any
// network contact.
type Target struct {
	Account    string // AWS account ID owning the registry (12 digits).
	Region     string // AWS region hosting the registry (e.g., "eu-west-1").
	Repository string // ECR repository name (e.g., "kvs-consumer-rekognition").
	Tag        string // Image tag; a mutable pointer the registry resolves to a digest.
}

var (
	accountPattern    = regexp.MustCompile(`^[0-9]{12}$`)
	regionPattern     = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-[0-9]$`)
	repositoryPattern = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*(?:/[a-z0-9]+(?:[._-][a-z0-9]+)*)*$`)
	tagPattern        = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]{0,127}$`)
)

// Returns the registry hostname for the target account and region.
func (t Target) Host() string {
	return t.Account + ".dkr.ecr." + t.Region + ".amazonaws.com"
}

// Returns the fully qualified image address for the target.
//
// The address is a pure function of the target's fields:
// <account>.dkr.ecr.<region>.amazonaws.com/<repository>:<tag>. It is stable
// across builds so orchestration tooling referencing it keeps resolving to
// the latest published content.
func (t Target) Address() string {
	return t.Host() + "/" + t.Repository + ":" + t.Tag
}

// Checks that every field is non-empty and syntactically valid.
func (t Target) Validate() error {
	if !accountPattern.MatchString(t.Account) {
		return fmt.Errorf("%w: account %q is not a 12-digit AWS account ID", ErrInvalidTarget, t.Account)
	}
	if !regionPattern.MatchString(t.Region) {
		return fmt.Errorf("%w: region %q is not a valid AWS region", ErrInvalidTarget, t.Region)
	}
	if !repositoryPattern.MatchString(t.Repository) {
		return fmt.Errorf("%w: repository %q is not a valid ECR repository name", ErrInvalidTarget, t.Repository)
	}
	if !tagPattern.MatchString(t.Tag) {
		return fmt.Errorf("%w: tag %q is not a valid image tag", ErrInvalidTarget, t.Tag)
	}
	return nil
}
