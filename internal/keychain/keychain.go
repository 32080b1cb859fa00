// Package keychain stores API keys in an OS-level secret store. Storage is
// optional and best-effort: every failure is reported to the caller as a
// plain error and the linker proceeds without it. The key value is passed to
// the helper tools via stdin or argv, never logged.
package keychain

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

const service = "codexlink"

// Backends returns the known backend names, "auto" first.
func Backends() []string {
	return []string{"auto", "macos", "secretstorage", "pass"}
}

// Resolve maps "auto" to a backend plausible for the current OS, or
// validates an explicit choice.
func Resolve(backend string) (string, error) {
	b := strings.ToLower(strings.TrimSpace(backend))
	switch b {
	case "", "none":
		return "", nil
	case "auto":
		switch runtime.GOOS {
		case "darwin":
			return "macos", nil
		case "linux":
			if _, err := exec.LookPath("secret-tool"); err == nil {
				return "secretstorage", nil
			}
			if _, err := exec.LookPath("pass"); err == nil {
				return "pass", nil
			}
			return "", fmt.Errorf("no keychain helper found (tried secret-tool, pass)")
		default:
			return "", fmt.Errorf("no keychain backend for %s", runtime.GOOS)
		}
	case "macos", "secretstorage", "pass":
		return b, nil
	default:
		return "", fmt.Errorf("unknown keychain backend %q", backend)
	}
}

// Store saves apiKey under envVar in the given backend.
func Store(backend, envVar, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("refusing to store an empty key")
	}
	account := strings.TrimSpace(envVar)
	if account == "" {
		account = "API_KEY"
	}
	switch backend {
	case "macos":
		return run(exec.Command("security", "add-generic-password",
			"-U", "-s", service, "-a", account, "-w", apiKey), "")
	case "secretstorage":
		cmd := exec.Command("secret-tool", "store",
			"--label", service+" "+account, "service", service, "account", account)
		return run(cmd, apiKey)
	case "pass":
		return run(exec.Command("pass", "insert", "-f", "-e", service+"/"+account), apiKey)
	case "":
		return nil
	default:
		return fmt.Errorf("unknown keychain backend %q", backend)
	}
}

func run(cmd *exec.Cmd, stdin string) error {
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin + "\n")
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s: %w", cmd.Path, err)
		}
		return fmt.Errorf("%s: %s", cmd.Path, msg)
	}
	return nil
}
