package build

import (
	"strings"
	"testing"
)

func TestDockerfile(t *testing.T) {
	desc := Description{
		BaseImage:      "python:3.10-slim",
		SystemPackages: []string{"ffmpeg", "libgl1"},
		DependencyFile: "requirements.txt",
		Entrypoint:     []string{"python3", "kvs_consumer_library_example.py"},
	}

	got, err := desc.Dockerfile()
	if err != nil {
		t.Fatalf("Dockerfile() = %v, want nil", err)
	}

	want := `FROM python:3.10-slim
RUN apt-get update \
    && apt-get install -y --no-install-recommends ffmpeg libgl1 \
    && rm -rf /var/lib/apt/lists/*
WORKDIR /app
COPY requirements.txt requirements.txt
RUN python3 -m pip install --no-cache-dir --upgrade pip \
    && python3 -m pip install --no-cache-dir -r requirements.txt
COPY . .
ENTRYPOINT ["python3","kvs_consumer_library_example.py"]
`
	if got != want {
		t.Fatalf("Dockerfile() =\n%s\nwant:\n%s", got, want)
	}
}

func TestDockerfileDeterministic(t *testing.T) {
	desc := Description{
		BaseImage:      "python:3.10-slim",
		SystemPackages: []string{"ffmpeg"},
		DependencyFile: "requirements.txt",
		Entrypoint:     []string{"python3", "app.py"},
	}

	first, err := desc.Dockerfile()
	if err != nil {
		t.Fatal(err)
	}
	second, err := desc.Dockerfile()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("Dockerfile() is not deterministic")
	}
}

func TestDockerfileNoSystemPackages(t *testing.T) {
	desc := Description{
		BaseImage:      "python:3.10-slim",
		DependencyFile: "requirements.txt",
		Entrypoint:     []string{"python3", "app.py"},
	}

	got, err := desc.Dockerfile()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "apt-get") {
		t.Fatalf("Dockerfile() contains a system package layer with no packages declared:\n%s", got)
	}
}

func TestDockerfileNestedDependencyFile(t *testing.T) {
	desc := Description{
		BaseImage:      "python:3.10-slim",
		DependencyFile: "deps/requirements.txt",
		Entrypoint:     []string{"python3", "app.py"},
	}

	got, err := desc.Dockerfile()
	if err != nil {
		t.Fatal(err)
	}

	// The install layer runs before the full source copy, so the path pip
	// reads must be exactly where the copy layer placed the file.
	if !strings.Contains(got, "COPY deps/requirements.txt deps/requirements.txt\n") {
		t.Fatalf("Dockerfile() does not preserve the dependency file path on copy:\n%s", got)
	}
	if !strings.Contains(got, "-r deps/requirements.txt\n") {
		t.Fatalf("Dockerfile() installs from a different path than the copy destination:\n%s", got)
	}
}

func TestDockerfileLayerOrder(t *testing.T) {
	desc := Description{
		BaseImage:      "python:3.10-slim",
		SystemPackages: []string{"ffmpeg"},
		DependencyFile: "requirements.txt",
		Entrypoint:     []string{"python3", "app.py"},
	}

	got, err := desc.Dockerfile()
	if err != nil {
		t.Fatal(err)
	}

	// Volatile layers must come after stable ones for cache reuse.
	order := []string{"FROM ", "apt-get install", "COPY requirements.txt", "pip install", "COPY . .", "ENTRYPOINT"}
	last := -1
	for _, marker := range order {
		i := strings.Index(got, marker)
		if i < 0 {
			t.Fatalf("Dockerfile() missing %q:\n%s", marker, got)
		}
		if i < last {
			t.Fatalf("Dockerfile() emits %q out of order:\n%s", marker, got)
		}
		last = i
	}
}
