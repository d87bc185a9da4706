package codec

import (
	"encoding/binary"
	"fmt"

	sb "github.com/setanarut/stitchbuilder"
)

const (
	minimalRecordSize = 8
	taggedRecordSize  = 9
)

// Command tags of the tagged binary format.
const (
	TagStitch      byte = 0x00
	TagJump        byte = 0x01
	TagColorChange byte = 0x02
	TagTrim        byte = 0x03
	TagEnd         byte = 0xFF
)

func appendXY(buf []byte, x, y int32) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(x))
	return binary.LittleEndian.AppendUint32(buf, uint32(y))
}

func readXY(rec []byte) (int32, int32) {
	return int32(binary.LittleEndian.Uint32(rec[0:4])), int32(binary.LittleEndian.Uint32(rec[4:8]))
}

func encodeMinimal(p *sb.Pattern) ([]byte, error) {
	buf := make([]byte, 0, len(p.Commands)*minimalRecordSize)
	for _, c := range p.Commands {
		if !c.Kind.HasCoordinates() {
			continue
		}
		x, y, err := roundPoint(c)
		if err != nil {
			return nil, err
		}
		buf = appendXY(buf, x, y)
	}
	return buf, nil
}

func decodeMinimal(data []byte) (*sb.Pattern, error) {
	if rem := len(data) % minimalRecordSize; rem != 0 {
		return nil, decodeErr(BinaryMinimal, len(data)-rem,
			"%d trailing bytes, records are %d bytes", rem, minimalRecordSize)
	}
	pts := make([][2]int32, 0, len(data)/minimalRecordSize)
	for off := 0; off < len(data); off += minimalRecordSize {
		x, y := readXY(data[off : off+minimalRecordSize])
		pts = append(pts, [2]int32{x, y})
	}
	return stitchesToPattern(pts, nil), nil
}

func encodeTagged(p *sb.Pattern) ([]byte, error) {
	buf := make([]byte, 0, len(p.Commands)*taggedRecordSize)
	for _, c := range p.Commands {
		var tag byte
		var x, y int32
		switch c.Kind {
		case sb.Stitch, sb.Jump:
			var err error
			if x, y, err = roundPoint(c); err != nil {
				return nil, err
			}
			tag = TagStitch
			if c.Kind == sb.Jump {
				tag = TagJump
			}
		case sb.ColorChange:
			tag, x = TagColorChange, int32(c.Thread)
		case sb.Trim:
			tag = TagTrim
		case sb.End:
			return buf, nil
		default:
			return nil, fmt.Errorf("codec: cannot encode command kind %v", c.Kind)
		}
		buf = append(buf, tag)
		buf = appendXY(buf, x, y)
	}
	return buf, nil
}

func decodeTagged(data []byte) (*sb.Pattern, error) {
	if rem := len(data) % taggedRecordSize; rem != 0 {
		return nil, decodeErr(BinaryTagged, len(data)-rem,
			"%d trailing bytes, records are %d bytes", rem, taggedRecordSize)
	}
	cmds := make([]sb.Command, 0, len(data)/taggedRecordSize+1)
	for off := 0; off < len(data); off += taggedRecordSize {
		tag := data[off]
		x, y := readXY(data[off+1 : off+taggedRecordSize])
		switch tag {
		case TagStitch:
			cmds = append(cmds, sb.Command{Kind: sb.Stitch, X: float64(x), Y: float64(y)})
		case TagJump:
			cmds = append(cmds, sb.Command{Kind: sb.Jump, X: float64(x), Y: float64(y)})
		case TagColorChange:
			if x < 0 {
				return nil, decodeErr(BinaryTagged, off, "negative thread index %d", x)
			}
			cmds = append(cmds, sb.Command{Kind: sb.ColorChange, Thread: int(x)})
		case TagTrim:
			cmds = append(cmds, sb.Command{Kind: sb.Trim})
		case TagEnd:
			if next := off + taggedRecordSize; next != len(data) {
				return nil, decodeErr(BinaryTagged, next, "data after END record")
			}
		default:
			return nil, decodeErr(BinaryTagged, off, "unknown command tag 0x%02x", tag)
		}
	}
	cmds = append(cmds, sb.Command{Kind: sb.End})
	return sb.NewPattern(cmds, nil), nil
}
