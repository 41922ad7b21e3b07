// Package resolver turns an injected dependency-resolution command into a
// list of coordinates. The external tool (Maven, Gradle, a wrapper script)
// is never assumed; callers hand over a command line and this package runs
// it and parses whatever coordinate lines it prints.
package resolver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/artagon/depbaseline/internal/coordinate"
	"github.com/artagon/depbaseline/internal/utils/logger"
)

// ErrUnavailable reports that no usable resolution command was configured.
var ErrUnavailable = errors.New("dependency resolution command unavailable")

// ResolutionError wraps a failure of the external resolution command.
type ResolutionError struct {
	Command string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving dependencies with %q: %v", e.Command, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver lists a project's dependency coordinates for the given scopes.
type Resolver interface {
	Resolve(ctx context.Context, scopes []string, transitive bool) ([]coordinate.Coordinate, error)
}

// ExecResolver runs an external command line through the shell. The command
// may contain {scopes} and {transitive} placeholders which are substituted
// before execution, e.g.
//
//	mvn -q dependency:list -DincludeScope={scopes} -DexcludeTransitive={transitive}
type ExecResolver struct {
	Command string
	Dir     string
}

// getShell returns the preferred shell, falling back to /bin/sh if bash is
// not available.
func getShell() string {
	shells := []string{"/bin/bash", "/usr/bin/bash", "/bin/sh"}
	for _, shell := range shells {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

// Resolve runs the configured command and parses its output into
// coordinates. Output lines that do not look like coordinates (build noise,
// headers, blank lines) are skipped; lines carrying a scope outside the
// requested set are dropped.
func (r *ExecResolver) Resolve(ctx context.Context, scopes []string, transitive bool) ([]coordinate.Coordinate, error) {
	log := logger.Logger()

	if strings.TrimSpace(r.Command) == "" {
		return nil, ErrUnavailable
	}

	cmdStr := strings.ReplaceAll(r.Command, "{scopes}", strings.Join(scopes, ","))
	cmdStr = strings.ReplaceAll(cmdStr, "{transitive}", strconv.FormatBool(transitive))

	log.Debugf("running resolver: %s", cmdStr)
	cmd := exec.CommandContext(ctx, getShell(), "-c", cmdStr)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if len(stderr.Bytes()) > 0 {
			log.Debugf("resolver stderr: %s", stderr.String())
		}
		return nil, &ResolutionError{Command: r.Command, Err: err}
	}

	coords := parseOutput(stdout.Bytes(), scopes)
	log.Debugf("resolver produced %d coordinates", len(coords))
	return coords, nil
}

func parseOutput(out []byte, scopes []string) []coordinate.Coordinate {
	wanted := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s != "" {
			wanted[s] = struct{}{}
		}
	}

	var coords []coordinate.Coordinate
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		// Maven prefixes list output with "[INFO]".
		line = strings.TrimSpace(strings.TrimPrefix(line, "[INFO]"))
		if line == "" || !strings.Contains(line, ":") {
			continue
		}
		c, err := coordinate.Parse(line)
		if err != nil {
			continue
		}
		if c.Scope != "" && len(wanted) > 0 {
			if _, ok := wanted[c.Scope]; !ok {
				continue
			}
		}
		coords = append(coords, c)
	}
	return coords
}
