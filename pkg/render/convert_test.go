package render

import (
	"context"
	"testing"

	"github.com/matzehuels/zigzag/pkg/errors"
)

func TestConvertRejects(t *testing.T) {
	tests := []struct {
		name   string
		format string
		scale  float64
		bin    string
		want   errors.Code
	}{
		{name: "unknown format", format: "gif", scale: 1, want: errors.ErrCodeUnsupported},
		{name: "bad scale", format: "png", scale: 0, want: errors.ErrCodeInvalidInput},
		{name: "missing converter", format: "pdf", bin: "zigzag-no-such-rsvg", want: errors.ErrCodeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.bin != "" {
				orig := rsvgConvert
				rsvgConvert = tt.bin
				t.Cleanup(func() { rsvgConvert = orig })
			}
			_, err := Convert(context.Background(), []byte("<svg/>"), tt.format, tt.scale)
			if !errors.Is(err, tt.want) {
				t.Errorf("Convert() err = %v, want %s", err, tt.want)
			}
		})
	}
}
