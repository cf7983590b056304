package sphinx

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/meridian-oss/sphindex/internal/daemon"
	"github.com/meridian-oss/sphindex/internal/domain/search/mode"
)

// Compile-time check: Client implements daemon.Client.
var _ daemon.Client = (*Client)(nil)

const defaultTimeout = 5 * time.Second

// Config holds connection parameters for a searchd daemon.
type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
}

// Client implements daemon.Client over the searchd binary protocol.
// Each query uses a fresh connection; searchd closes non-persistent
// connections after one request anyway.
type Client struct {
	addr    string
	timeout time.Duration
}

// NewClient creates a searchd client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		timeout: timeout,
	}, nil
}

// Close releases client resources. Connections are per-request, so there is
// nothing to tear down.
func (c *Client) Close() {}

// Ping dials the daemon and performs the version handshake.
func (c *Client) Ping(ctx context.Context) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}

// Query runs one search request and returns the ranked match list.
func (c *Client) Query(ctx context.Context, req *daemon.Request) (*daemon.Result, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	body := packSearchRequest(req)
	if err := writePacket(conn, commandSearch, verSearch, body); err != nil {
		return nil, &daemon.Error{Op: daemon.OpSearch, Err: err}
	}

	status, raw, err := readPacket(conn)
	if err != nil {
		return nil, &daemon.Error{Op: daemon.OpSearch, Err: err}
	}

	res, err := parseSearchResult(status, raw)
	if err != nil {
		return nil, &daemon.Error{
			Op:  daemon.OpSearch,
			Err: fmt.Errorf("%w: %w", daemon.ErrBadResponse, err),
		}
	}
	return res, nil
}

// connect dials the daemon and exchanges protocol versions.
func (c *Client) connect(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, &daemon.Error{
			Op:  daemon.OpConnect,
			Err: fmt.Errorf("%w: %w", daemon.ErrUnavailable, err),
		}
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	var buf [4]byte
	if _, err := io.ReadFull(conn, buf[:]); err != nil {
		conn.Close()
		return nil, &daemon.Error{
			Op:  daemon.OpConnect,
			Err: fmt.Errorf("%w: read server version: %w", daemon.ErrUnavailable, err),
		}
	}
	if v := binary.BigEndian.Uint32(buf[:]); v < protoVersion {
		conn.Close()
		return nil, &daemon.Error{
			Op:  daemon.OpConnect,
			Err: fmt.Errorf("unsupported daemon protocol version %d", v),
		}
	}

	binary.BigEndian.PutUint32(buf[:], protoVersion)
	if _, err := conn.Write(buf[:]); err != nil {
		conn.Close()
		return nil, &daemon.Error{
			Op:  daemon.OpConnect,
			Err: fmt.Errorf("%w: send client version: %w", daemon.ErrUnavailable, err),
		}
	}

	return conn, nil
}

// writePacket frames a command body: command u16, version u16, length u32, body.
func writePacket(conn net.Conn, command, version uint16, body []byte) error {
	header := make([]byte, 8)
	binary.BigEndian.PutUint16(header[0:], command)
	binary.BigEndian.PutUint16(header[2:], version)
	binary.BigEndian.PutUint32(header[4:], uint32(len(body)))

	if _, err := conn.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := conn.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// readPacket reads a response frame: status u16, version u16, length u32, body.
func readPacket(conn net.Conn) (status uint16, _ []byte, err error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(conn, header); err != nil {
		return 0, nil, fmt.Errorf("read header: %w", err)
	}
	status = binary.BigEndian.Uint16(header[0:])
	length := binary.BigEndian.Uint32(header[4:])

	if length > 8<<20 {
		return 0, nil, fmt.Errorf("oversized response (%d bytes)", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(conn, body); err != nil {
		return 0, nil, fmt.Errorf("read body: %w", err)
	}
	return status, body, nil
}

// packSearchRequest serializes one query in the SEARCH command layout.
func packSearchRequest(req *daemon.Request) []byte {
	p := &packer{}
	p.u32(1) // one query per request

	p.u32(uint32(req.Offset))
	p.u32(uint32(req.Limit))
	p.u32(wireMatchMode(req.MatchMode))
	p.u32(wireRankProximityBM25)
	p.u32(wireSortMode(req.SortMode))
	p.str(req.SortBy)
	p.str(req.Query)
	p.u32(0) // no per-field weights

	index := req.Index
	if index == "" {
		index = "*"
	}
	p.str(index)

	p.u32(1) // 64-bit identifier range
	p.u64(0)
	p.u64(0)

	p.u32(uint32(len(req.Filters)))
	for _, f := range req.Filters {
		p.str(f.Attr)
		p.u32(wireFilterValues)
		p.u32(uint32(len(f.Values)))
		for _, v := range f.Values {
			p.i64(int64(v))
		}
		p.u32(0) // not excluding
	}

	p.u32(0)  // no grouping function
	p.str("") // no group-by attribute

	maxMatches := req.MaxMatches
	if maxMatches <= 0 {
		maxMatches = 1000
	}
	p.u32(uint32(maxMatches))
	p.str("@group desc")

	p.u32(0)  // cutoff
	p.u32(0)  // retry count
	p.u32(0)  // retry delay
	p.str("") // group distinct
	p.u32(0)  // no geo anchor
	p.u32(0)  // no per-index weights
	p.u32(0)  // max query time
	p.u32(0)  // no per-field weights
	p.str("") // comment

	return p.bytes()
}

func wireMatchMode(m mode.MatchMode) uint32 {
	switch m {
	case mode.All:
		return wireMatchAll
	case mode.Any:
		return wireMatchAny
	case mode.Phrase:
		return wireMatchPhrase
	case mode.Boolean:
		return wireMatchBoolean
	default:
		return wireMatchExtended
	}
}

func wireSortMode(m mode.SortMode) uint32 {
	if m == mode.SortExtended {
		return wireSortExtended
	}
	return wireSortRelevance
}

// parseSearchResult decodes the single query result from a SEARCH response.
func parseSearchResult(status uint16, body []byte) (*daemon.Result, error) {
	u := &unpacker{data: body}

	res := &daemon.Result{Status: int(status)}

	// Packet-level warning carries its own message before the result payload.
	if status == resultWarning {
		warn, err := u.str()
		if err != nil {
			return nil, err
		}
		res.Warning = warn
	}
	if status != resultOK && status != resultWarning {
		msg, err := u.str()
		if err != nil {
			return nil, err
		}
		res.Warning = msg
		return res, nil
	}

	// Per-query status repeats inside the body.
	qstatus, err := u.u32()
	if err != nil {
		return nil, err
	}
	res.Status = int(qstatus)
	if qstatus != resultOK {
		msg, err := u.str()
		if err != nil {
			return nil, err
		}
		res.Warning = msg
		if qstatus != resultWarning {
			return res, nil
		}
	}

	if err := skipFields(u); err != nil {
		return nil, err
	}

	attrNames, attrTypes, err := readAttrSchema(u)
	if err != nil {
		return nil, err
	}

	count, err := u.u32()
	if err != nil {
		return nil, err
	}
	id64, err := u.u32()
	if err != nil {
		return nil, err
	}

	res.Matches = make([]daemon.Match, 0, count)
	for i := uint32(0); i < count; i++ {
		m, err := readMatch(u, attrNames, attrTypes, id64 != 0)
		if err != nil {
			return nil, fmt.Errorf("match %d: %w", i, err)
		}
		res.Matches = append(res.Matches, m)
	}

	total, err := u.u32()
	if err != nil {
		return nil, err
	}
	totalFound, err := u.u32()
	if err != nil {
		return nil, err
	}
	msecs, err := u.u32()
	if err != nil {
		return nil, err
	}
	res.Total = int(total)
	res.TotalFound = int(totalFound)
	res.TimeMsec = int(msecs)

	// Per-word statistics trail the payload; nothing here consumes them.
	return res, nil
}

// Result status codes inside a response.
const (
	resultOK      = 0
	resultError   = 1
	resultRetry   = 2
	resultWarning = 3
)

func skipFields(u *unpacker) error {
	n, err := u.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		if _, err := u.str(); err != nil {
			return err
		}
	}
	return nil
}

func readAttrSchema(u *unpacker) ([]string, []uint32, error) {
	n, err := u.u32()
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, n)
	types := make([]uint32, n)
	for i := uint32(0); i < n; i++ {
		if names[i], err = u.str(); err != nil {
			return nil, nil, err
		}
		if types[i], err = u.u32(); err != nil {
			return nil, nil, err
		}
	}
	return names, types, nil
}

func readMatch(u *unpacker, names []string, types []uint32, id64 bool) (daemon.Match, error) {
	var m daemon.Match
	var err error

	if id64 {
		m.DocID, err = u.u64()
	} else {
		var id uint32
		id, err = u.u32()
		m.DocID = uint64(id)
	}
	if err != nil {
		return m, err
	}

	weight, err := u.u32()
	if err != nil {
		return m, err
	}
	m.Weight = int(weight)

	m.Attrs = make(map[string]uint64, len(names))
	for i, name := range names {
		v, err := readAttrValue(u, types[i])
		if err != nil {
			return m, fmt.Errorf("attr %s: %w", name, err)
		}
		m.Attrs[name] = v
	}
	return m, nil
}

// readAttrValue consumes one attribute value. String attributes are consumed
// but reported as 0; matches only carry numeric attributes in this layer.
// Multi-value attributes report their first value.
func readAttrValue(u *unpacker, typ uint32) (uint64, error) {
	if typ&attrMulti != 0 {
		n, err := u.u32()
		if err != nil {
			return 0, err
		}
		var first uint64
		for i := uint32(0); i < n; i++ {
			v, err := u.u32()
			if err != nil {
				return 0, err
			}
			if i == 0 {
				first = uint64(v)
			}
		}
		return first, nil
	}

	switch typ {
	case attrBigint:
		return u.u64()
	case attrString:
		if _, err := u.str(); err != nil {
			return 0, err
		}
		return 0, nil
	case attrFloat:
		// Raw IEEE-754 bits; callers needing the float value convert themselves.
		bits, err := u.u32()
		return uint64(bits), err
	default: // integer, bool, timestamp
		v, err := u.u32()
		return uint64(v), err
	}
}
