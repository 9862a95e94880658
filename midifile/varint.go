package midifile

// reader is a cursor over a fully resident buffer. Offsets are absolute
// within the file so errors can point at the faulty byte.
type reader struct {
	buf []byte
	pos int
	end int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf, end: len(buf)}
}

// sub returns a cursor limited to the next n bytes.
func (r *reader) sub(n int) *reader {
	return &reader{buf: r.buf, pos: r.pos, end: r.pos + n}
}

func (r *reader) remaining() int { return r.end - r.pos }

func (r *reader) next() (byte, error) {
	if r.pos >= r.end {
		return 0, ErrUnexpectedEnd
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, ErrUnexpectedEnd
	}
	b := make([]byte, n)
	copy(b, r.buf[r.pos:r.pos+n])
	r.pos += n
	return b, nil
}

func (r *reader) u16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, ErrUnexpectedEnd
	}
	v := uint16(r.buf[r.pos])<<8 | uint16(r.buf[r.pos+1])
	r.pos += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, ErrUnexpectedEnd
	}
	b := r.buf[r.pos:]
	v := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	r.pos += 4
	return v, nil
}

func (r *reader) varInt() (uint32, error) {
	v, n, err := ReadVarInt(r.buf[r.pos:r.end])
	r.pos += n
	return v, err
}

// ReadVarInt decodes a variable-length quantity from the start of b and
// returns it with the number of bytes consumed.
func ReadVarInt(b []byte) (value uint32, n int, err error) {
	for n < len(b) {
		c := b[n]
		n++
		value = value<<7 | uint32(c&0x7F)
		if c&0x80 == 0 {
			return value, n, nil
		}
	}
	return value, n, ErrUnexpectedEnd
}

// AppendVarInt appends the variable-length encoding of v to b.
func AppendVarInt(b []byte, v uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		tmp[i] = byte(v&0x7F) | 0x80
	}
	return append(b, tmp[i:]...)
}
