package sphinx

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Wire-level constants of the searchd binary protocol. All integers are
// big-endian; strings are a u32 length followed by raw bytes.
const (
	protoVersion  = 1
	commandSearch = 0
	verSearch     = 0x11E
)

// Match mode codes on the wire.
const (
	wireMatchAll      = 0
	wireMatchAny      = 1
	wireMatchPhrase   = 2
	wireMatchBoolean  = 3
	wireMatchExtended = 6 // extended2: boolean-capable extended syntax
)

// Sort mode codes on the wire.
const (
	wireSortRelevance = 0
	wireSortExtended  = 4
)

// Ranker and filter codes on the wire.
const (
	wireRankProximityBM25 = 0
	wireFilterValues      = 0
)

// Attribute type codes in search responses.
const (
	attrInteger = 1
	attrBool    = 4
	attrFloat   = 5
	attrBigint  = 6
	attrString  = 7
	attrMulti   = 0x40000000
)

// packer accumulates a big-endian request body.
type packer struct {
	buf bytes.Buffer
}

func (p *packer) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	p.buf.Write(b[:])
}

func (p *packer) u64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	p.buf.Write(b[:])
}

func (p *packer) i64(v int64) { p.u64(uint64(v)) }

func (p *packer) str(s string) {
	p.u32(uint32(len(s)))
	p.buf.WriteString(s)
}

func (p *packer) bytes() []byte { return p.buf.Bytes() }

// unpacker walks a big-endian response body.
type unpacker struct {
	data []byte
	pos  int
}

func (u *unpacker) remaining() int { return len(u.data) - u.pos }

func (u *unpacker) u32() (uint32, error) {
	if u.remaining() < 4 {
		return 0, fmt.Errorf("truncated at offset %d: want u32", u.pos)
	}
	v := binary.BigEndian.Uint32(u.data[u.pos:])
	u.pos += 4
	return v, nil
}

func (u *unpacker) u64() (uint64, error) {
	if u.remaining() < 8 {
		return 0, fmt.Errorf("truncated at offset %d: want u64", u.pos)
	}
	v := binary.BigEndian.Uint64(u.data[u.pos:])
	u.pos += 8
	return v, nil
}

func (u *unpacker) str() (string, error) {
	n, err := u.u32()
	if err != nil {
		return "", err
	}
	if uint32(u.remaining()) < n {
		return "", fmt.Errorf("truncated at offset %d: want %d-byte string", u.pos, n)
	}
	s := string(u.data[u.pos : u.pos+int(n)])
	u.pos += int(n)
	return s, nil
}
