// Package preflight verifies the local tooling before any AWS call is made.
// Failures here are fatal and never retried.
package preflight

import (
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// PreconditionError is an unsupported or missing local dependency.
type PreconditionError struct {
	Subject string
	Detail  string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s: %s", e.Subject, e.Detail)
}

// Result summarizes the environment for the startup banner.
type Result struct {
	Platform      string
	GoVersion     string
	AWSCLIVersion string
}

// Checker runs the environment checks. The exec hooks exist so tests can
// script the AWS CLI without a real binary on PATH.
type Checker struct {
	lookPath func(string) (string, error)
	version  func(string) ([]byte, error)
}

// NewChecker returns a Checker wired to the real toolchain.
func NewChecker() *Checker {
	return &Checker{
		lookPath: exec.LookPath,
		version: func(path string) ([]byte, error) {
			return exec.Command(path, "--version").Output()
		},
	}
}

// Check verifies the AWS CLI is installed and at major version 2 or newer.
// Shared credential profiles are resolved by the CLI's config files, so a
// missing or ancient CLI usually means the profile flags will not work
// either.
func (c *Checker) Check() (Result, error) {
	result := Result{
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion: runtime.Version(),
	}

	path, err := c.lookPath("aws")
	if err != nil {
		return result, &PreconditionError{Subject: "aws cli", Detail: "not installed or not on PATH"}
	}

	out, err := c.version(path)
	if err != nil {
		return result, &PreconditionError{Subject: "aws cli", Detail: fmt.Sprintf("failed to run aws --version: %v", err)}
	}

	version, major, err := parseCLIVersion(string(out))
	if err != nil {
		return result, &PreconditionError{Subject: "aws cli", Detail: err.Error()}
	}
	result.AWSCLIVersion = version

	if major < 2 {
		return result, &PreconditionError{
			Subject: "aws cli",
			Detail:  fmt.Sprintf("version %s is unsupported, version 2 or higher is required", version),
		}
	}

	return result, nil
}

// parseCLIVersion extracts the version from `aws --version` output, which
// looks like "aws-cli/2.15.30 Python/3.11.8 Linux/6.1 ...".
func parseCLIVersion(output string) (version string, major int, err error) {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) == 0 {
		return "", 0, fmt.Errorf("empty aws --version output")
	}

	parts := strings.SplitN(fields[0], "/", 2)
	if len(parts) != 2 || parts[0] != "aws-cli" {
		return "", 0, fmt.Errorf("unrecognized aws --version output: %q", fields[0])
	}

	version = parts[1]
	majorText, _, _ := strings.Cut(version, ".")
	major, err = strconv.Atoi(majorText)
	if err != nil {
		return "", 0, fmt.Errorf("unparseable aws cli version: %q", version)
	}

	return version, major, nil
}
