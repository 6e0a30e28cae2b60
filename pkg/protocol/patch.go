package protocol

import (
	"errors"
	"io"
)

// PatchOp is the type of a location patch operation.
type PatchOp uint8

const (
	PatchURLPush    PatchOp = 0x01 // history.pushState with the given URL
	PatchURLReplace PatchOp = 0x02 // history.replaceState with the given URL
	PatchScrollTo   PatchOp = 0x03 // window.scrollTo(0, y)
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchURLPush:
		return "URLPush"
	case PatchURLReplace:
		return "URLReplace"
	case PatchScrollTo:
		return "ScrollTo"
	default:
		return "Unknown"
	}
}

// ErrInvalidPatchOp is returned when decoding an unknown patch operation.
var ErrInvalidPatchOp = errors.New("protocol: invalid patch op")

// Patch is a single location operation.
type Patch struct {
	Op  PatchOp
	URL string // For URLPush/URLReplace
	Y   int    // For ScrollTo
}

// NewURLPushPatch creates a patch that pushes url as a new history entry.
func NewURLPushPatch(url string) Patch {
	return Patch{Op: PatchURLPush, URL: url}
}

// NewURLReplacePatch creates a patch that replaces the current history entry.
func NewURLReplacePatch(url string) Patch {
	return Patch{Op: PatchURLReplace, URL: url}
}

// NewScrollToPatch creates a patch that restores the vertical scroll offset.
func NewScrollToPatch(y int) Patch {
	return Patch{Op: PatchScrollTo, Y: y}
}

// PatchesFrame is a batch of patches applied by the client in order,
// within a single animation frame.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// EncodePatches encodes a patches frame payload.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		encodePatch(e, &pf.Patches[i])
	}
	return e.Bytes()
}

func encodePatch(e *Encoder, p *Patch) {
	e.WriteByte(byte(p.Op))
	switch p.Op {
	case PatchURLPush, PatchURLReplace:
		e.WriteString(p.URL)
	case PatchScrollTo:
		e.WriteUvarint(uint64(p.Y))
	}
}

// DecodePatches decodes a patches frame payload.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	// Each patch is at least one byte, so a count past the remaining
	// payload is malformed.
	if count > uint64(d.Remaining()) {
		return nil, io.ErrUnexpectedEOF
	}

	pf := &PatchesFrame{Seq: seq, Patches: make([]Patch, 0, count)}
	for i := uint64(0); i < count; i++ {
		p, err := decodePatch(d)
		if err != nil {
			return nil, err
		}
		pf.Patches = append(pf.Patches, p)
	}
	return pf, nil
}

func decodePatch(d *Decoder) (Patch, error) {
	op, err := d.ReadByte()
	if err != nil {
		return Patch{}, err
	}

	p := Patch{Op: PatchOp(op)}
	switch p.Op {
	case PatchURLPush, PatchURLReplace:
		if p.URL, err = d.ReadString(); err != nil {
			return Patch{}, err
		}
	case PatchScrollTo:
		y, err := d.ReadUvarint()
		if err != nil {
			return Patch{}, err
		}
		p.Y = int(y)
	default:
		return Patch{}, ErrInvalidPatchOp
	}
	return p, nil
}
