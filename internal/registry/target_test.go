package registry

import (
	"errors"
	"testing"
)

func TestAddress(t *testing.T) {
	target := Target{
		Account:    "109308348564",
		Region:     "eu-west-1",
		Repository: "kvs-consumer-rekognition",
		Tag:        "latest",
	}

	want := "109308348564.dkr.ecr.eu-west-1.amazonaws.com/kvs-consumer-rekognition:latest"
	if got := target.Address(); got != want {
		t.Fatalf("Address() = %q, want %q", got, want)
	}

	// Same fields must always produce the same address.
	if target.Address() != target.Address() {
		t.Fatal("Address() is not deterministic")
	}
}

func TestValidate(t *testing.T) {
	valid := Target{
		Account:    "109308348564",
		Region:     "eu-west-1",
		Repository: "kvs-consumer-rekognition",
		Tag:        "latest",
	}

	tests := []struct {
		name    string
		mutate  func(*Target)
		wantErr bool
	}{
		{
			name:   "valid target",
			mutate: func(*Target) {},
		},
		{
			name:   "nested repository",
			mutate: func(tg *Target) { tg.Repository = "team/kvs-consumer" },
		},
		{
			name:   "gov region",
			mutate: func(tg *Target) { tg.Region = "us-gov-west-1" },
		},
		{
			name:    "empty account",
			mutate:  func(tg *Target) { tg.Account = "" },
			wantErr: true,
		},
		{
			name:    "short account",
			mutate:  func(tg *Target) { tg.Account = "12345" },
			wantErr: true,
		},
		{
			name:    "non-numeric account",
			mutate:  func(tg *Target) { tg.Account = "10930834856x" },
			wantErr: true,
		},
		{
			name:    "malformed region",
			mutate:  func(tg *Target) { tg.Region = "euwest1" },
			wantErr: true,
		},
		{
			name:    "uppercase repository",
			mutate:  func(tg *Target) { tg.Repository = "KVS-Consumer" },
			wantErr: true,
		},
		{
			name:    "empty tag",
			mutate:  func(tg *Target) { tg.Tag = "" },
			wantErr: true,
		},
		{
			name:    "tag with slash",
			mutate:  func(tg *Target) { tg.Tag = "v1/x" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := valid
			tt.mutate(&target)

			err := target.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTarget) {
					t.Fatalf("Validate() = %v, want ErrInvalidTarget", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}
