// Package render converts the final markdown summary into downloadable
// formats.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// ErrToolNotInstalled means the external converter binary is missing.
var ErrToolNotInstalled = errors.New("pandoc is not installed")

// ToolExitError carries the converter's diagnostic output.
type ToolExitError struct {
	ExitCode int
	Stderr   string
}

func (e *ToolExitError) Error() string {
	return fmt.Sprintf("pandoc exited with code %d: %s", e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Pandoc shells out to the pandoc binary.
type Pandoc struct {
	Bin string // Defaults to "pandoc" on PATH.
}

// Render converts the file at in to out; the output format follows out's extension.
func (p Pandoc) Render(ctx context.Context, in, out string) error {
	bin := p.Bin
	if bin == "" {
		bin = "pandoc"
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, in, "-o", out)
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return ErrToolNotInstalled
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ToolExitError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
	}
	return fmt.Errorf("run pandoc: %w", err)
}
