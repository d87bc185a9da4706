package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	sb "github.com/setanarut/stitchbuilder"
)

func encodeCSV(p *sb.Pattern) ([]byte, error) {
	var buf bytes.Buffer
	for _, c := range p.Commands {
		if !c.Kind.HasCoordinates() {
			continue
		}
		x, y, err := roundPoint(c)
		if err != nil {
			return nil, err
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(strconv.Itoa(int(x)))
		buf.WriteByte(',')
		buf.WriteString(strconv.Itoa(int(y)))
	}
	return buf.Bytes(), nil
}

func decodeCSV(data []byte) (*sb.Pattern, error) {
	var pts [][2]int32
	off := 0
	for len(data) > 0 {
		line := data
		next := len(data)
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, next = data[:i], i+1
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			xs, ys, ok := bytes.Cut(line, []byte{','})
			if !ok {
				return nil, decodeErr(CSV, off, "expected \"x,y\", got %q", line)
			}
			x, err := strconv.ParseInt(string(bytes.TrimSpace(xs)), 10, 32)
			if err != nil {
				return nil, decodeErr(CSV, off, "bad x %q", xs)
			}
			y, err := strconv.ParseInt(string(bytes.TrimSpace(ys)), 10, 32)
			if err != nil {
				return nil, decodeErr(CSV, off, "bad y %q", ys)
			}
			pts = append(pts, [2]int32{int32(x), int32(y)})
		}
		data = data[next:]
		off += next
	}
	return stitchesToPattern(pts, nil), nil
}

type jsonPoint struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

type jsonDocument struct {
	Points []jsonPoint    `json:"points"`
	Meta   map[string]any `json:"meta"`
}

func encodeJSON(p *sb.Pattern) ([]byte, error) {
	doc := jsonDocument{Points: []jsonPoint{}, Meta: p.Meta}
	if doc.Meta == nil {
		doc.Meta = map[string]any{}
	}
	for _, c := range p.Commands {
		if !c.Kind.HasCoordinates() {
			continue
		}
		x, y, err := roundPoint(c)
		if err != nil {
			return nil, err
		}
		doc.Points = append(doc.Points, jsonPoint{X: x, Y: y})
	}
	return json.MarshalIndent(doc, "", "  ")
}

func decodeJSON(data []byte) (*sb.Pattern, error) {
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			return nil, decodeErr(JSON, int(syntaxErr.Offset), "%v", syntaxErr)
		case errors.As(err, &typeErr):
			return nil, decodeErr(JSON, int(typeErr.Offset), "%v", typeErr)
		}
		return nil, decodeErr(JSON, 0, "%v", err)
	}
	pts := make([][2]int32, len(doc.Points))
	for i, pt := range doc.Points {
		pts[i] = [2]int32{pt.X, pt.Y}
	}
	return stitchesToPattern(pts, doc.Meta), nil
}
