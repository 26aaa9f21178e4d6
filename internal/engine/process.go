package engine

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// MemoryLocator is the reserved database locator for a transient in-memory
// database. Any other locator is treated as a file-system path owned by the
// engine binary.
const MemoryLocator = ":memory:"

// DefaultBinary is the engine executable resolved from PATH when no
// explicit binary path is configured.
const DefaultBinary = "duckdb"

var (
	lookupOnce     sync.Once
	resolvedBinary string
	lookupErr      error
)

// resolveBinary locates the engine executable. The PATH lookup for the
// default binary happens once per process and is reused by every session;
// an explicitly configured binary path bypasses the lookup entirely.
func resolveBinary(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	lookupOnce.Do(func() {
		resolvedBinary, lookupErr = exec.LookPath(DefaultBinary)
	})
	if lookupErr != nil {
		return "", fmt.Errorf("locate %s binary: %w", DefaultBinary, lookupErr)
	}
	return resolvedBinary, nil
}

// process bundles a spawned engine subprocess with its pipes.
type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
}

// spawn starts the engine binary in machine-readable batch mode against the
// given locator. The engine is pointed at an empty init file so ambient user
// configuration cannot change the output framing the session depends on.
func spawn(binary, locator string, readOnly bool) (*process, error) {
	args := []string{"-json", "-batch", "-init", os.DevNull}
	if readOnly {
		args = append(args, "-readonly")
	}
	if locator == "" {
		locator = MemoryLocator
	}
	args = append(args, locator)

	cmd := exec.Command(binary, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine process: %w", err)
	}

	return &process{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}, nil
}
