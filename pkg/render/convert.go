package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/zigzag/pkg/errors"
)

// rsvgConvert is the librsvg converter looked up on PATH.
var rsvgConvert = "rsvg-convert"

// Convert turns an SVG document into pdf or png. scale multiplies the png
// resolution and is ignored for pdf.
func Convert(ctx context.Context, svg []byte, format string, scale float64) ([]byte, error) {
	args := []string{"-f", format}
	switch format {
	case "pdf":
	case "png":
		if scale <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %g", scale)
		}
		args = append(args, "-z", strconv.FormatFloat(scale, 'f', 2, 64))
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "cannot convert svg to %q", format)
	}

	bin, err := exec.LookPath(rsvgConvert)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err,
			"%s output needs %s (apt install librsvg2-bin, brew install librsvg)", format, rsvgConvert)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", rsvgConvert, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
