// Package bincheck probes for required external binaries, caching results
// per process.
package bincheck

import (
	"context"
	"os/exec"
	"strings"
	"sync"
)

type Result struct {
	InPath  bool
	Version string
}

type Checker struct {
	cache sync.Map
}

func NewChecker() *Checker {
	return &Checker{}
}

// Check reports whether name is on PATH and, when versionArgs are given, the
// first line the binary prints for them.
func (c *Checker) Check(ctx context.Context, name string, versionArgs ...string) Result {
	if v, ok := c.cache.Load(name); ok {
		r, _ := v.(Result)
		return r
	}

	r := Result{InPath: lookPath(name)}
	if r.InPath && len(versionArgs) > 0 {
		r.Version = readVersion(ctx, name, versionArgs)
	}

	actual, _ := c.cache.LoadOrStore(name, r)
	stored, _ := actual.(Result)
	return stored
}

func lookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func readVersion(ctx context.Context, name string, args []string) string {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line)
}
