package runner

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/mod/modfile"

	"github.com/example/sfl-lite/sfl/domain"
)

// testNamePattern matches the top-level test names printed by go test -list.
var testNamePattern = regexp.MustCompile(`^(Test|Example|Fuzz)[\p{L}\p{N}_]*$`)

// GoTestExecutor runs Go tests one at a time, each with its own coverage
// profile, by shelling out to the go command.
type GoTestExecutor struct {
	config     GoTestConfig
	profileDir string
}

// NewGoTestExecutor creates an executor writing profiles under profileDir.
func NewGoTestExecutor(config GoTestConfig, profileDir string) *GoTestExecutor {
	if config.GoBinary == "" {
		config.GoBinary = "go"
	}
	if len(config.Packages) == 0 {
		config.Packages = []string{"./..."}
	}
	return &GoTestExecutor{config: config, profileDir: profileDir}
}

// List implements TestExecutor using go test -list.
func (e *GoTestExecutor) List(ctx context.Context) ([]TestCase, error) {
	args := append([]string{"test", "-list", "."}, e.config.Packages...)
	cmd := e.command(ctx, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("go test -list failed: %w\noutput: %s", err, stderr.String())
	}
	return parseTestList(out), nil
}

// parseTestList assigns the names printed before each "ok <pkg>" line to
// that package.
func parseTestList(out []byte) []TestCase {
	var tests []TestCase
	var pending []string

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch {
		case fields[0] == "ok" && len(fields) >= 2:
			for _, name := range pending {
				if strings.HasPrefix(name, "Example") || strings.HasPrefix(name, "Fuzz") {
					continue
				}
				tests = append(tests, TestCase{Package: fields[1], Name: name, Index: len(tests)})
			}
			pending = pending[:0]
		case fields[0] == "?":
			pending = pending[:0]
		case testNamePattern.MatchString(line):
			pending = append(pending, line)
		}
	}
	return tests
}

// Run implements TestExecutor. A non-zero exit is a failing test; a
// cancelled or timed-out context is an execution error.
func (e *GoTestExecutor) Run(ctx context.Context, tc TestCase) (*domain.TestResult, error) {
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(e.profileDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}
	profile := e.profilePath(tc)
	_ = os.Remove(profile)

	args := []string{
		"test",
		"-count=1",
		"-covermode=set",
		"-coverprofile=" + profile,
		"-run", "^" + regexp.QuoteMeta(tc.Name) + "$",
	}
	if e.config.CoverPkg != "" {
		args = append(args, "-coverpkg="+e.config.CoverPkg)
	}
	args = append(args, tc.Package)

	cmd := e.command(ctx, args...)
	start := time.Now()
	output, err := cmd.CombinedOutput()
	duration := time.Since(start)

	if ctx.Err() != nil {
		return nil, fmt.Errorf("test %s cancelled or timed out: %w", tc.ID(), ctx.Err())
	}

	result := &domain.TestResult{
		Name:     tc.ID(),
		Outcome:  domain.OutcomePass,
		Duration: duration,
		Logs:     string(output),
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("failed to run %s: %w", tc.ID(), err)
		}
		result.Outcome = domain.OutcomeFail
	}
	return result, nil
}

// Read implements CoverageReader.
func (e *GoTestExecutor) Read(ctx context.Context, tc TestCase) (*domain.Snapshot, error) {
	path := e.profilePath(tc)
	if _, err := os.Stat(path); err != nil {
		// Build failures leave no profile; the test still counts as failed.
		if os.IsNotExist(err) {
			return &domain.Snapshot{}, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCoverageUnavailable, err)
	}
	return ReadProfileFile(path, e.config.TrimPrefix)
}

func (e *GoTestExecutor) profilePath(tc TestCase) string {
	return filepath.Join(e.profileDir, fmt.Sprintf("%05d-%s.out", tc.Index, tc.Name))
}

func (e *GoTestExecutor) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, e.config.GoBinary, args...)
	cmd.Dir = e.config.Dir
	cmd.Env = os.Environ()
	for k, v := range e.config.Environment {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	return cmd
}

// ModulePath returns the module path declared by dir/go.mod. Profiles name
// files by import path, so this is the prefix that makes class names
// relative to the module root.
func ModulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("%w: no module directive in %s", domain.ErrInvalidConfig, filepath.Join(dir, "go.mod"))
	}
	return path, nil
}
