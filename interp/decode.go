package interp

import (
	bstd "github.com/deneonet/benc/std"
	"github.com/rhelmot/objectively/object"
)

// decoder walks a bytecode blob, tracking a cursor position. It never
// copies the blob: bytes-literal operands are handed back as sub-slices
// that become object.BytesView instances over the owning object.Bytes.
type decoder struct {
	code []byte
	pos  int
}

func newDecoder(code []byte, pos int) *decoder {
	return &decoder{code: code, pos: pos}
}

func (d *decoder) done() bool { return d.pos >= len(d.code) }

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.code) {
		return 0, object.NewRuntimeErrorf("bytecode truncated at offset %d", d.pos)
	}
	b := d.code[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readOp() (Op, error) {
	b, err := d.readByte()
	return Op(b), err
}

// readUvarint decodes a 7-bits-per-byte, MSB-continuation unsigned integer.
func (d *decoder) readUvarint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, object.NewRuntimeErrorf("varint too long at offset %d", d.pos)
		}
	}
}

// readVarint decodes a signed varint: the same unsigned encoding, with the
// sign extended from the top payload bit of the final byte.
func (d *decoder) readVarint() (int64, error) {
	start := d.pos
	var result int64
	var shift uint
	for {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << shift
			}
			return result, nil
		}
		if shift >= 64 {
			return 0, object.NewRuntimeErrorf("varint too long at offset %d", start)
		}
	}
}

// readFloat decodes eight raw host-endian bytes via benc's fixed-width
// codec.
func (d *decoder) readFloat() (float64, error) {
	if d.pos+8 > len(d.code) {
		return 0, object.NewRuntimeErrorf("bytecode truncated decoding float at offset %d", d.pos)
	}
	n, v, err := bstd.UnmarshalFloat64(d.pos, d.code)
	if err != nil {
		return 0, object.NewRuntimeErrorf("malformed float literal at offset %d: %v", d.pos, err)
	}
	d.pos = n
	return v, nil
}

// readOffset decodes a four-raw-byte host-endian jump target.
func (d *decoder) readOffset() (int, error) {
	if d.pos+4 > len(d.code) {
		return 0, object.NewRuntimeErrorf("bytecode truncated decoding offset at offset %d", d.pos)
	}
	n, v, err := bstd.UnmarshalUint32(d.pos, d.code)
	if err != nil {
		return 0, object.NewRuntimeErrorf("malformed offset at offset %d: %v", d.pos, err)
	}
	d.pos = n
	return int(v), nil
}

// readBytesLiteral decodes a length-prefixed raw-bytes operand as a view
// into owner's backing storage (it does not copy).
func (d *decoder) readBytesLiteral(group *object.Group, owner *object.Bytes) (*object.BytesView, error) {
	length, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	if d.pos+int(length) > len(d.code) {
		return nil, object.NewRuntimeErrorf("bytecode truncated decoding %d-byte literal at offset %d", length, d.pos)
	}
	slice := owner.Data[d.pos : d.pos+int(length)]
	d.pos += int(length)
	return object.NewBytesView(group, owner, slice)
}
