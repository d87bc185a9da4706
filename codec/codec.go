// Package codec reads and writes stitch patterns.
//
// Four formats are supported:
//
//   - BinaryMinimal: 8-byte little-endian records (int32 x, int32 y), one per
//     Stitch or Jump. Colour changes, trims and jump flags are not kept;
//     decoding yields stitches only. Files keep the ".dst" suffix existing
//     tools expect, but this is not the Tajima DST layout.
//   - BinaryTagged: 9-byte records (tag, int32 x, int32 y) covering every
//     command. COLOR_CHANGE stores the thread index in x. The trailing END is
//     not written; the end of the buffer ends the program, and an explicit
//     END record is accepted on input.
//   - CSV: one "x,y" line per coordinate, no header, no trailing newline.
//   - JSON: {"points": [{"x": .., "y": ..}], "meta": {..}}.
//
// Coordinates are rounded to the nearest integer, so decoding an encoded
// pattern and encoding it again is lossless.
package codec

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	sb "github.com/setanarut/stitchbuilder"
)

type Format int

const (
	BinaryMinimal Format = iota
	BinaryTagged
	CSV
	JSON
)

var formatNames = [...]string{"binary-minimal", "binary-tagged", "csv", "json"}
var formatExts = [...]string{".dst", ".tst", ".stitches.csv", ".dse.json"}

func (f Format) valid() bool { return f >= BinaryMinimal && f <= JSON }

func (f Format) String() string {
	if !f.valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Extension is the file suffix used for f, including the leading dot.
func (f Format) Extension() string {
	if !f.valid() {
		return ""
	}
	return formatExts[f]
}

func ParseFormat(name string) (Format, error) {
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFromFilename picks the format by file suffix.
func FormatFromFilename(name string) (Format, error) {
	// Longest suffixes first so ".dse.json" wins over a bare ".json".
	for _, f := range []Format{CSV, JSON, BinaryTagged, BinaryMinimal} {
		if strings.HasSuffix(name, f.Extension()) {
			return f, nil
		}
	}
	switch {
	case strings.HasSuffix(name, ".csv"):
		return CSV, nil
	case strings.HasSuffix(name, ".json"):
		return JSON, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

var (
	ErrUnknownFormat = errors.New("codec: unknown format")

	// ErrFormatMismatch is wrapped by every DecodeError.
	ErrFormatMismatch = errors.New("codec: data does not match format")

	// ErrCoordinateRange is returned when a coordinate does not fit an int32.
	ErrCoordinateRange = errors.New("codec: coordinate out of range")
)

// DecodeError reports malformed input and the byte offset where decoding
// stopped.
type DecodeError struct {
	Format Format
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: %v: %s at byte %d", e.Format, e.Reason, e.Offset)
}

func (e *DecodeError) Unwrap() error { return ErrFormatMismatch }

func decodeErr(f Format, off int, format string, args ...any) error {
	return &DecodeError{Format: f, Offset: off, Reason: fmt.Sprintf(format, args...)}
}

// Encode serializes p in format f.
func Encode(p *sb.Pattern, f Format) ([]byte, error) {
	switch f {
	case BinaryMinimal:
		return encodeMinimal(p)
	case BinaryTagged:
		return encodeTagged(p)
	case CSV:
		return encodeCSV(p)
	case JSON:
		return encodeJSON(p)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
}

// Write encodes p and writes it to w.
func Write(w io.Writer, p *sb.Pattern, f Format) error {
	data, err := Encode(p, f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode parses data in format f. The result always ends with a single End
// and has its bounds computed from the decoded coordinates.
func Decode(data []byte, f Format) (*sb.Pattern, error) {
	switch f {
	case BinaryMinimal:
		return decodeMinimal(data)
	case BinaryTagged:
		return decodeTagged(data)
	case CSV:
		return decodeCSV(data)
	case JSON:
		return decodeJSON(data)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
}

// DecodeWithThreads decodes data and attaches threads, the palette the
// program is stitched with. Colour changes that do not name one of them
// select threads cyclically by position.
func DecodeWithThreads(data []byte, f Format, threads []sb.Thread) (*sb.Pattern, error) {
	p, err := Decode(data, f)
	if err != nil {
		return nil, err
	}
	p.UseThreads(threads)
	return p, nil
}

// Read reads everything from r and decodes it.
func Read(r io.Reader, f Format) (*sb.Pattern, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data, f)
}

func roundCoord(v float64) (int32, error) {
	r := math.Round(v)
	if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %g", ErrCoordinateRange, v)
	}
	return int32(r), nil
}

func roundPoint(c sb.Command) (int32, int32, error) {
	x, err := roundCoord(c.X)
	if err != nil {
		return 0, 0, err
	}
	y, err := roundCoord(c.Y)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func stitchesToPattern(pts [][2]int32, meta map[string]any) *sb.Pattern {
	cmds := make([]sb.Command, 0, len(pts)+1)
	for _, pt := range pts {
		cmds = append(cmds, sb.Command{Kind: sb.Stitch, X: float64(pt[0]), Y: float64(pt[1])})
	}
	cmds = append(cmds, sb.Command{Kind: sb.End})
	p := sb.NewPattern(cmds, nil)
	p.Meta = meta
	return p
}
