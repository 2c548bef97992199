package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kvsship/kvsship/internal/build"
	"github.com/kvsship/kvsship/internal/publish"
	"github.com/kvsship/kvsship/internal/registry"
)

type stubStages struct {
	authErr    error
	buildErr   error
	publishErr error

	authCalls    int
	buildCalls   int
	publishCalls int
}

func (s *stubStages) Authenticate(context.Context, registry.Target) (registry.Credential, error) {
	s.authCalls++
	if s.authErr != nil {
		return registry.Credential{}, s.authErr
	}
	return registry.Credential{
		Username:  "AWS",
		Secret:    "token",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (s *stubStages) Build(context.Context, build.Description) (*build.Artifact, error) {
	s.buildCalls++
	if s.buildErr != nil {
		return nil, s.buildErr
	}
	return &build.Artifact{Platforms: []string{"linux/amd64", "linux/arm64"}}, nil
}

func (s *stubStages) Publish(context.Context, *build.Artifact, registry.Credential, registry.Target) (*publish.Receipt, error) {
	s.publishCalls++
	if s.publishErr != nil {
		return nil, s.publishErr
	}
	return &publish.Receipt{
		Address:  "109308348564.dkr.ecr.eu-west-1.amazonaws.com/kvs-consumer-rekognition:latest",
		PushedAt: time.Now(),
	}, nil
}

func testTarget() registry.Target {
	return registry.Target{
		Account:    "109308348564",
		Region:     "eu-west-1",
		Repository: "kvs-consumer-rekognition",
		Tag:        "latest",
	}
}

func TestRunDone(t *testing.T) {
	stages := &stubStages{}
	driver := New(stages, stages, stages)

	if driver.State() != StateIdle {
		t.Fatalf("State() = %s before Run, want %s", driver.State(), StateIdle)
	}

	receipt, err := driver.Run(t.Context(), testTarget(), build.Description{})
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if driver.State() != StateDone {
		t.Fatalf("State() = %s, want %s", driver.State(), StateDone)
	}
	if receipt.Address != "109308348564.dkr.ecr.eu-west-1.amazonaws.com/kvs-consumer-rekognition:latest" {
		t.Fatalf("receipt address = %q", receipt.Address)
	}
	if stages.authCalls != 1 || stages.buildCalls != 1 || stages.publishCalls != 1 {
		t.Fatalf("stage calls = %d/%d/%d, want 1/1/1", stages.authCalls, stages.buildCalls, stages.publishCalls)
	}
}

func TestRunFailFast(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*stubStages, error)
		stage     State
		buildRuns int
		pubRuns   int
	}{
		{
			name:  "authentication failure",
			setup: func(s *stubStages, err error) { s.authErr = err },
			stage: StateAuthenticating,
		},
		{
			name:      "build failure",
			setup:     func(s *stubStages, err error) { s.buildErr = err },
			stage:     StateBuilding,
			buildRuns: 1,
		},
		{
			name:      "publish failure",
			setup:     func(s *stubStages, err error) { s.publishErr = err },
			stage:     StatePublishing,
			buildRuns: 1,
			pubRuns:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cause := errors.New("stage blew up")
			stages := &stubStages{}
			tt.setup(stages, cause)
			driver := New(stages, stages, stages)

			receipt, err := driver.Run(t.Context(), testTarget(), build.Description{})
			if receipt != nil {
				t.Fatal("Run() returned a receipt alongside an error")
			}
			if driver.State() != StateFailed {
				t.Fatalf("State() = %s, want %s", driver.State(), StateFailed)
			}

			var stageErr *StageError
			if !errors.As(err, &stageErr) {
				t.Fatalf("Run() error %T, want *StageError", err)
			}
			if stageErr.Stage != tt.stage {
				t.Fatalf("failing stage = %s, want %s", stageErr.Stage, tt.stage)
			}
			if !errors.Is(err, cause) {
				t.Fatal("originating error not preserved through StageError")
			}

			// Stages after the failure must never run.
			if stages.buildCalls != tt.buildRuns {
				t.Fatalf("build ran %d times, want %d", stages.buildCalls, tt.buildRuns)
			}
			if stages.publishCalls != tt.pubRuns {
				t.Fatalf("publish ran %d times, want %d", stages.publishCalls, tt.pubRuns)
			}
		})
	}
}

func TestRunExpiredCredentialBetweenStages(t *testing.T) {
	stages := &stubStages{publishErr: publish.ErrCredentialExpired}
	driver := New(stages, stages, stages)

	_, err := driver.Run(t.Context(), testTarget(), build.Description{})
	if !errors.Is(err, publish.ErrCredentialExpired) {
		t.Fatalf("Run() = %v, want ErrCredentialExpired", err)
	}
	if driver.State() != StateFailed {
		t.Fatalf("State() = %s, want %s", driver.State(), StateFailed)
	}
}

func TestRunMissingContextBeforeNetwork(t *testing.T) {
	// A real builder with an unreadable context must fail the pipeline at
	// the build stage; the publisher (the only networked stage after auth)
	// must never be reached.
	stages := &stubStages{}
	builder := &build.Builder{Output: t.TempDir()}
	driver := New(stages, builder, stages)

	desc := build.Description{
		BaseImage:      "python:3.10-slim",
		DependencyFile: "requirements.txt",
		ContextDir:     "/does/not/exist",
		Entrypoint:     []string{"python3", "app.py"},
	}

	_, err := driver.Run(t.Context(), testTarget(), desc)
	if !errors.Is(err, build.ErrMissingContext) {
		t.Fatalf("Run() = %v, want ErrMissingContext", err)
	}
	if stages.publishCalls != 0 {
		t.Fatal("publish stage ran after a build validation failure")
	}
}
