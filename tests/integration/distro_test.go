//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMain(m *testing.M) {
	if err := exec.Command("docker", "info").Run(); err != nil {
		fmt.Println("Docker not available; skipping integration tests:", err)
		os.Exit(0)
	}
	os.Exit(m.Run())
}

// findProjectRoot walks up from this file's location until it finds go.mod.
func findProjectRoot(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Log("runtime.Caller failed; falling back to os.Getwd")
		dir, _ := os.Getwd()
		return dir
	}
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	t.Log("go.mod not found; falling back to os.Getwd")
	wd, _ := os.Getwd()
	return wd
}

// testScript runs inside each container: unit tests, then the X11 and
// audio tests against Xvfb and a PulseAudio null sink.
const testScript = `set -e
cp -r /src/. /workspace/
cd /workspace
GOINSTALLED=$(go version | awk '{print $3}' | sed 's/go//')
go mod edit -go="$GOINSTALLED" -toolchain=none
go mod tidy
go vet ./...
go test -count=1 ./...
Xvfb :99 -screen 0 1280x720x24 &
XVFB_PID=$!
export DISPLAY=:99
pulseaudio --start --exit-idle-time=-1
pactl load-module module-null-sink sink_name=gotalk_null
pactl set-default-source gotalk_null.monitor
sleep 1
go test -v -count=1 -tags x11test ./internal/typing/... ./internal/audio/...
go build -o /tmp/gotalk-voicecode .
kill $XVFB_PID || true
`

// distros lists the Dockerfile directories under dockerfiles/.
var distros = []string{"ubuntu-24.04", "fedora-41", "arch-latest"}

func TestDistroBuildsAndTests(t *testing.T) {
	projectRoot := findProjectRoot(t)

	for _, name := range distros {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
			defer cancel()

			req := testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:       filepath.Join(projectRoot, "tests", "integration", "dockerfiles", name),
					Dockerfile:    "Dockerfile",
					KeepImage:     true, // cache between runs
					PrintBuildLog: false,
				},
				Mounts: testcontainers.ContainerMounts{
					{
						Source:   testcontainers.GenericBindMountSource{HostPath: projectRoot},
						Target:   testcontainers.ContainerMountTarget("/src"),
						ReadOnly: true,
					},
					{
						Source: testcontainers.GenericVolumeMountSource{Name: "gotalk-voicecode-gomodcache"},
						Target: testcontainers.ContainerMountTarget("/root/go/pkg/mod"),
					},
				},
				Cmd:        []string{"/bin/sh", "-c", testScript},
				WaitingFor: wait.ForExit().WithExitTimeout(15 * time.Minute),
			}

			container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
				ContainerRequest: req,
				Started:          true,
			})
			if err != nil {
				t.Errorf("[%s] failed to start container: %v", name, err)
				return
			}
			defer container.Terminate(context.Background()) //nolint:errcheck

			// Collect container logs.
			logReader, logErr := container.Logs(ctx)
			var logOutput string
			if logErr == nil {
				raw, _ := io.ReadAll(logReader)
				logOutput = string(raw)
			}
			t.Logf("[%s] container logs:\n%s", name, logOutput)

			// Check exit code.
			state, err := container.State(ctx)
			if err != nil {
				t.Errorf("[%s] failed to get container state: %v", name, err)
				return
			}
			if state.ExitCode != 0 {
				// Use Errorf (not FailNow) so all distros run even if one fails.
				t.Errorf("[%s] container exited with code %d\nlogs:\n%s",
					name, state.ExitCode, logOutput)
				if strings.Contains(logOutput, "FAIL") {
					t.Logf("[%s] Test failures detected in logs", name)
				}
			}
		})
	}
}
