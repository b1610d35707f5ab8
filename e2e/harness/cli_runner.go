package harness

import (
	"bytes"
	"context"
	"time"

	"github.com/artpar/crumbs/internal/cli"
)

// CLIResult holds CLI execution results.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// CLIRunner executes CLI commands against the harness cookie file.
type CLIRunner struct {
	harness *E2EHarness
}

// Run executes a CLI command with the given arguments.
func (r *CLIRunner) Run(args ...string) (*CLIResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.harness.timeout)
	defer cancel()

	start := time.Now()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := cli.NewRootCommand("test")
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{
		"--config", r.harness.ConfigFile(),
		"--file", r.harness.CookieFile(),
	}, args...))

	err := cmd.ExecuteContext(ctx)

	result := &CLIResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		result.ExitCode = 1
	}

	return result, err
}

// Set is a convenience method for the set command.
func (r *CLIRunner) Set(name, value, domain string, opts ...string) (*CLIResult, error) {
	args := []string{"set", name, value, "--domain", domain}
	args = append(args, opts...)
	return r.Run(args...)
}

// Get prints the value of a cookie stored under path "/".
func (r *CLIRunner) Get(name, domain string) (*CLIResult, error) {
	return r.Run("get", name, domain)
}

// List lists every stored cookie.
func (r *CLIRunner) List(opts ...string) (*CLIResult, error) {
	return r.Run(append([]string{"list"}, opts...)...)
}

// Fetch requests url and stores the cookies it sets.
func (r *CLIRunner) Fetch(url string, opts ...string) (*CLIResult, error) {
	args := []string{"fetch", url}
	args = append(args, opts...)
	return r.Run(args...)
}
