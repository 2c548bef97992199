package registry

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/smithy-go"
)

// The subset of the ECR API the authenticator uses.
type tokenAPI interface {
	GetAuthorizationToken(ctx context.Context, in *ecr.GetAuthorizationTokenInput, opts ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error)
}

// Exchanges ambient AWS credentials for a short-lived registry session.
//
// Each Authenticate call mints a fresh token; nothing is cached locally, so
// a pipeline run always starts from the ambient credential chain (env vars,
// shared config, instance role).
type Authenticator struct {
	api tokenAPI // ECR client scoped to the target region.
}

// Creates an authenticator for the target's region.
//
// The ambient AWS credential chain is resolved here; holding valid ambient
// credentials is the caller's responsibility.
func NewAuthenticator(ctx context.Context, target Target) (*Authenticator, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(target.Region))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return &Authenticator{api: ecr.NewFromConfig(cfg)}, nil
}

// Mints a credential scoped to push/pull on the target's registry.
//
// The returned credential is valid for a bounded window (ECR tokens last
// twelve hours, but the pipeline treats them as minutes-lived and never
// persists them). Failures are classified as ErrUnauthorized when the
// ambient credentials are rejected and ErrUnreachable when the endpoint
// cannot be contacted.
func (a *Authenticator) Authenticate(ctx context.Context, target Target) (Credential, error) {
	if err := target.Validate(); err != nil {
		return Credential{}, err
	}

	issued := time.Now().UTC()
	out, err := a.api.GetAuthorizationToken(ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return Credential{}, classifyAuthFailure(err)
	}

	if len(out.AuthorizationData) == 0 {
		return Credential{}, fmt.Errorf("%w: registry returned no authorization data", ErrBadToken)
	}

	data := out.AuthorizationData[0]
	username, secret, err := decodeAuthorization(aws.ToString(data.AuthorizationToken))
	if err != nil {
		return Credential{}, err
	}

	cred := Credential{
		Username:  username,
		Secret:    secret,
		IssuedAt:  issued,
		ExpiresAt: aws.ToTime(data.ExpiresAt),
	}

	slog.Debug("registry session established",
		"host", target.Host(),
		"expires_at", cred.ExpiresAt,
	)

	return cred, nil
}

// Splits a base64 "user:password" ECR authorization token into its parts.
func decodeAuthorization(token string) (username, secret string, err error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrBadToken, err)
	}

	username, secret, ok := strings.Cut(string(raw), ":")
	if !ok || username == "" || secret == "" {
		return "", "", fmt.Errorf("%w: expected user:password pair", ErrBadToken)
	}

	return username, secret, nil
}

// Maps an ECR call failure into the authentication error taxonomy.
//
// API-level rejections (bad signature, missing permissions, expired ambient
// session) mean the caller's credentials are the problem. Anything below the
// API layer means the endpoint could not be contacted.
func classifyAuthFailure(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: %s", ErrUnauthorized, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
