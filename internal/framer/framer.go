// Package framer binds a connection's raw, non-blocking byte stream to
// typed inbound/outbound messages, via a 4-byte length-prefixed record
// boundary: one frame per logical message, no multi-fragment reassembly.
//
// The framer owns its buffer memory (borrowed from pkg/bufpool) and its
// byte/message counters; it knows nothing about message kinds, client
// identity or transactions — that's internal/beadapter's job.
package framer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/mgmtd/beadapter/pkg/bufpool"
)

// frameHeaderSize is the length, in bytes, of the length-prefix that
// precedes every encoded message on the wire.
const frameHeaderSize = 4

// lastFragmentBit is the top bit of the length prefix, reserved as a
// "last fragment" flag. This framer never reassembles multi-fragment
// messages — internal/wire always hands it one complete encoded message
// per Enqueue — so the bit is always set on write and ignored on read.
const lastFragmentBit = 0x80000000

// ErrWouldBlock is returned by a Conn's Read/Write when the underlying
// non-blocking descriptor has no data ready (EAGAIN/EWOULDBLOCK). It is not
// a transport failure; the caller simply waits for the next readiness
// event.
var ErrWouldBlock = errors.New("framer: would block")

// ErrFrameTooLarge is returned when a peer's declared frame length exceeds
// the configured maximum message length — a protocol-taxonomy condition,
// not a transport error; the caller should disconnect.
var ErrFrameTooLarge = errors.New("framer: frame exceeds maximum message length")

// Conn is the minimal non-blocking byte-stream collaborator the framer
// reads from and writes to. Its implementation — binding this to a real
// file descriptor, including setting O_NONBLOCK and socket buffer sizes —
// is out of scope here.
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// ReadOutcome is the result of one Read call.
type ReadOutcome int

const (
	ReadOK ReadOutcome = iota
	ReadNeedProcess
	ReadDisconnect
)

func (o ReadOutcome) String() string {
	switch o {
	case ReadOK:
		return "ok-more"
	case ReadNeedProcess:
		return "need-process"
	case ReadDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// WriteOutcome is the result of one Write call.
type WriteOutcome int

const (
	WriteNone WriteOutcome = iota
	WriteMore
	WriteWritesOff
	WriteDisconnect
)

func (o WriteOutcome) String() string {
	switch o {
	case WriteNone:
		return "none"
	case WriteMore:
		return "more"
	case WriteWritesOff:
		return "writes-off"
	case WriteDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Counters are the byte/message counters the status operator dump reads.
type Counters struct {
	BytesIn  uint64
	BytesOut uint64
	MsgsIn   uint64
	MsgsOut  uint64
}

// Framer holds one connection's inbound accumulation buffer and outbound
// frame queue. It is not safe for concurrent use — the core is
// single-threaded and cooperative, so this is never a problem in practice.
type Framer struct {
	pool *bufpool.Pool

	maxMessageLen  uint32
	highWaterMark  int
	readChunkSize  int

	inbound []byte

	outbound       [][]byte
	outboundLen    int
	outboundOffset int

	counters Counters
	closed   bool
}

// Config carries the framer's tunables — see pkg/config's TunablesConfig,
// which is the single source of truth for these values across the module.
type Config struct {
	Pool          *bufpool.Pool
	MaxMessageLen uint32
	HighWaterMark int
	ReadChunkSize int
}

// New constructs a Framer. A nil Config.Pool gets a fresh pool of its own
// with bufpool's default size classes.
func New(cfg Config) *Framer {
	pool := cfg.Pool
	if pool == nil {
		pool = bufpool.NewPool(nil)
	}
	chunk := cfg.ReadChunkSize
	if chunk <= 0 {
		chunk = bufpool.DefaultSmallSize
	}
	return &Framer{
		pool:          pool,
		maxMessageLen: cfg.MaxMessageLen,
		highWaterMark: cfg.HighWaterMark,
		readChunkSize: chunk,
	}
}

// Counters returns a snapshot of the byte/message counters.
func (f *Framer) Counters() Counters {
	return f.counters
}

// OutboundQueueLen reports the number of complete frames still queued for
// write, for tests and the status dump.
func (f *Framer) OutboundQueueLen() int {
	return len(f.outbound)
}

// OutboundBytesQueued reports the total bytes still queued for write.
func (f *Framer) OutboundBytesQueued() int {
	return f.outboundLen
}

// Read appends any immediately-available bytes from conn to the inbound
// buffer. It never blocks: ErrWouldBlock from conn is translated to
// ReadOK (nothing new, try again later); io.EOF or any other error is a
// transport failure and yields ReadDisconnect.
func (f *Framer) Read(conn Conn) (ReadOutcome, error) {
	if f.closed {
		return ReadDisconnect, nil
	}

	buf := f.pool.Get(f.readChunkSize)
	defer f.pool.Put(buf)

	n, err := conn.Read(buf)
	if n > 0 {
		f.inbound = append(f.inbound, buf[:n]...)
		f.counters.BytesIn += uint64(n)
	}

	switch {
	case errors.Is(err, ErrWouldBlock):
		if f.hasCompleteFrame() {
			return ReadNeedProcess, nil
		}
		return ReadOK, nil
	case errors.Is(err, io.EOF):
		return ReadDisconnect, nil
	case err != nil:
		return ReadDisconnect, fmt.Errorf("framer: read: %w", err)
	}

	if f.hasCompleteFrame() {
		return ReadNeedProcess, nil
	}
	return ReadOK, nil
}

func (f *Framer) hasCompleteFrame() bool {
	if len(f.inbound) < frameHeaderSize {
		return false
	}
	length := f.pendingFrameLength()
	return len(f.inbound) >= frameHeaderSize+int(length)
}

func (f *Framer) pendingFrameLength() uint32 {
	header := binary.BigEndian.Uint32(f.inbound[:frameHeaderSize])
	return header &^ lastFragmentBit
}

// Handler is invoked once per complete inbound frame with that frame's
// decoded payload bytes (the frame stripped of its length prefix).
type Handler func(frame []byte) error

// Process invokes handler once per complete buffered frame, up to
// batchCap frames, and reports whether more complete frames remain
// buffered after the batch (the caller should reschedule PROC_MSG if so).
// A frame whose declared length exceeds the configured maximum is a
// protocol error: it is dropped (per the taxonomy's "drop the frame,
// continue") and Process returns the error for the caller to log, but
// still continues to the next frame.
func (f *Framer) Process(batchCap int, handler Handler) (more bool, err error) {
	count := 0
	var firstErr error

	for count < batchCap && f.hasCompleteFrame() {
		length := f.pendingFrameLength()
		total := frameHeaderSize + int(length)

		if f.maxMessageLen > 0 && length > f.maxMessageLen {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
			}
			f.inbound = f.inbound[total:]
			continue
		}

		frame := make([]byte, length)
		copy(frame, f.inbound[frameHeaderSize:total])
		f.inbound = f.inbound[total:]
		f.counters.MsgsIn++
		count++

		if herr := handler(frame); herr != nil && firstErr == nil {
			firstErr = herr
		}
	}

	return f.hasCompleteFrame(), firstErr
}

// Enqueue frames payload (a fully-encoded message from internal/wire) and
// appends it to the outbound queue. It returns the number of bytes queued
// (header included), or -1 if the connection is already closed.
func (f *Framer) Enqueue(payload []byte) int {
	if f.closed {
		return -1
	}

	frame := make([]byte, frameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame[:frameHeaderSize], uint32(len(payload))|lastFragmentBit)
	copy(frame[frameHeaderSize:], payload)

	f.outbound = append(f.outbound, frame)
	f.outboundLen += len(frame)
	f.counters.MsgsOut++
	return len(frame)
}

// Write drains as much of the outbound queue as conn will accept without
// blocking. WriteWritesOff is returned once the queued byte count exceeds
// the configured high-water mark; the caller must then stop scheduling
// writes and resume (e.g. after a WRITES_ON timer) once drained.
func (f *Framer) Write(conn Conn) (WriteOutcome, error) {
	if f.closed {
		return WriteDisconnect, nil
	}

	for len(f.outbound) > 0 {
		cur := f.outbound[0][f.outboundOffset:]
		n, err := conn.Write(cur)
		if n > 0 {
			f.outboundOffset += n
			f.counters.BytesOut += uint64(n)
		}

		if f.outboundOffset == len(f.outbound[0]) {
			f.outboundLen -= len(f.outbound[0])
			f.outbound = f.outbound[1:]
			f.outboundOffset = 0
		}

		switch {
		case errors.Is(err, ErrWouldBlock):
			return f.writeOutcomeForQueueState(), nil
		case errors.Is(err, io.EOF):
			return WriteDisconnect, nil
		case err != nil:
			return WriteDisconnect, fmt.Errorf("framer: write: %w", err)
		}
	}

	return f.writeOutcomeForQueueState(), nil
}

func (f *Framer) writeOutcomeForQueueState() WriteOutcome {
	if f.highWaterMark > 0 && f.outboundLen > f.highWaterMark {
		return WriteWritesOff
	}
	if len(f.outbound) > 0 {
		return WriteMore
	}
	return WriteNone
}

// Close marks the framer closed: further Enqueue calls return -1, and
// Read/Write report WriteDisconnect/ReadDisconnect without touching conn.
func (f *Framer) Close() {
	f.closed = true
}
