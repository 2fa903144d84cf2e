// Package beadapter implements the client-adapter state machine: one
// instance per accepted backend-client connection, owning identity, I/O
// scheduling, reference counting, and the five events that drive it
// (CONN_INIT, CONN_READ, PROC_MSG, CONN_WRITE, WRITES_ON).
//
// The core is single-threaded and cooperative: no two event callbacks ever
// run concurrently, so Adapter carries no locks — lifecycle safety comes
// purely from refcounting and explicit disconnect/destroy bookkeeping.
package beadapter

import (
	"fmt"
	"time"

	"github.com/mgmtd/beadapter/internal/clientid"
	"github.com/mgmtd/beadapter/internal/configsync"
	"github.com/mgmtd/beadapter/internal/datastore"
	"github.com/mgmtd/beadapter/internal/eventloop"
	"github.com/mgmtd/beadapter/internal/framer"
	"github.com/mgmtd/beadapter/internal/logger"
	"github.com/mgmtd/beadapter/internal/metrics"
	"github.com/mgmtd/beadapter/internal/registry"
	"github.com/mgmtd/beadapter/internal/subscr"
	"github.com/mgmtd/beadapter/internal/txn"
	"github.com/mgmtd/beadapter/internal/wire"
	"github.com/mgmtd/beadapter/pkg/bufpool"
	"github.com/mgmtd/beadapter/pkg/config"
)

// State is the adapter's lifecycle state: a connection moves from
// UNIDENTIFIED through IDENTIFIED, SYNCING and STEADY, or off the happy
// path into DISCONNECTED and finally DESTROYED once its last reference
// drops.
type State int

const (
	StateNew State = iota
	StateUnidentified
	StateIdentified
	StateSyncing
	StateSteady
	StateDisconnected
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateUnidentified:
		return "UNIDENTIFIED"
	case StateIdentified:
		return "IDENTIFIED"
	case StateSyncing:
		return "SYNCING"
	case StateSteady:
		return "STEADY"
	case StateDisconnected:
		return "DISCONNECTED"
	case StateDestroyed:
		return "DESTROYED"
	default:
		return "UNKNOWN"
	}
}

// Flags is the adapter's bit-set of runtime flags.
type Flags uint32

const (
	FlagWritesOff Flags = 1 << iota
)

// DisconnectReason classifies why an adapter was disconnected, for
// structured logging and the per-reason Prometheus counter.
type DisconnectReason int

const (
	DisconnectNone DisconnectReason = iota
	DisconnectIOError
	DisconnectNameClash
	DisconnectProtocolError
	DisconnectShutdown
)

func (r DisconnectReason) String() string {
	switch r {
	case DisconnectIOError:
		return "io_error"
	case DisconnectNameClash:
		return "name_clash"
	case DisconnectProtocolError:
		return "protocol_error"
	case DisconnectShutdown:
		return "shutdown"
	default:
		return "none"
	}
}

// Conn is the non-blocking byte-stream collaborator an Adapter is bound to.
// Binding this to a real socket — including setting O_NONBLOCK and the
// configured send/receive buffer sizes — is out of scope here.
type Conn interface {
	framer.Conn
	Close() error
}

// Deps bundles every collaborator the adapter needs: the process-wide
// registry and subscription map, the out-of-scope TXN/datastore
// collaborators, the event loop, metrics, and the buffer pool backing its
// framer.
type Deps struct {
	Registry      *registry.Registry
	Txn           txn.Manager
	EventLoop     eventloop.EventLoop
	Subscriptions *subscr.Map
	Datastore     datastore.Datastore
	Metrics       *metrics.Metrics
	BufPool       *bufpool.Pool
}

// Adapter is one connected backend client.
type Adapter struct {
	fd    int
	peer  string
	name  string
	id    clientid.ID
	flags Flags
	state State

	refcount int

	conn Conn
	fr   *framer.Framer

	cachedChanges *configsync.ChangeSet

	eventHandles map[eventloop.EventKind]eventloop.Handle

	deps     *Deps
	tunables config.TunablesConfig
}

// Create establishes a new adapter for an accepted connection: it binds
// conn, registers in deps.Registry, arms the initial read event, and
// schedules CONN_INIT. The returned Adapter starts in UNIDENTIFIED.
func Create(fd int, peer string, conn Conn, deps *Deps, tunables config.TunablesConfig) *Adapter {
	a := &Adapter{
		fd:           fd,
		peer:         peer,
		name:         fmt.Sprintf("Unknown-FD-%d", fd),
		id:           clientid.MAX,
		state:        StateNew,
		conn:         conn,
		deps:         deps,
		tunables:     tunables,
		eventHandles: make(map[eventloop.EventKind]eventloop.Handle),
	}

	a.fr = framer.New(framer.Config{
		Pool:          deps.BufPool,
		MaxMessageLen: uint32(tunables.MaxMessageLen),
		HighWaterMark: tunables.OutboundHighWaterMark,
		ReadChunkSize: int(tunables.ReadChunkSize),
	})

	deps.Registry.Insert(a)
	a.refcount++ // registry membership holds one reference

	a.state = StateUnidentified
	a.armReadEvent()
	a.scheduleConnInit(0)

	logger.Info("adapter created", logger.AdapterFD(fd), logger.Peer(peer), logger.AdapterName(a.name))
	return a
}

// Accessors satisfying registry.Adapter and configsync.AdapterView.

func (a *Adapter) FD() int                   { return a.fd }
func (a *Adapter) Name() string              { return a.name }
func (a *Adapter) ID() clientid.ID           { return a.id }
func (a *Adapter) State() State              { return a.state }
func (a *Adapter) Flags() Flags              { return a.flags }
func (a *Adapter) RefCount() int             { return a.refcount }
func (a *Adapter) Peer() string              { return a.peer }
func (a *Adapter) Counters() framer.Counters { return a.fr.Counters() }

func (a *Adapter) CachedChanges() *configsync.ChangeSet      { return a.cachedChanges }
func (a *Adapter) SetCachedChanges(cs *configsync.ChangeSet) { a.cachedChanges = cs }

// armEvent records h as the armed handle for kind, clearing any
// previously-armed handle of the same kind first. Arming a previously-bare
// kind takes one reference; replacing an already-armed kind does not (the
// slot, not the handle value, is what's counted).
func (a *Adapter) armEvent(kind eventloop.EventKind, h eventloop.Handle) {
	if old, ok := a.eventHandles[kind]; ok {
		a.deps.EventLoop.Clear(old)
	} else {
		a.refcount++
	}
	a.eventHandles[kind] = h
}

// clearEvent disarms kind, if armed, dropping the reference it held.
func (a *Adapter) clearEvent(kind eventloop.EventKind) {
	h, ok := a.eventHandles[kind]
	if !ok {
		return
	}
	a.deps.EventLoop.Clear(h)
	delete(a.eventHandles, kind)
	a.refcount--
	a.maybeDestroy()
}

func (a *Adapter) maybeDestroy() {
	if a.refcount < 0 {
		panic(fmt.Sprintf("beadapter: negative refcount for adapter %q", a.name))
	}
	if a.refcount == 0 && a.state != StateDestroyed {
		a.state = StateDestroyed
		logger.Debug("adapter destroyed", logger.AdapterName(a.name))
	}
}

func (a *Adapter) armReadEvent() {
	h := a.deps.EventLoop.ArmRead(a.fd, a.onConnRead)
	a.armEvent(eventloop.EventConnRead, h)
}

// armWriteEvent arms CONN_WRITE. Arming a write while WRITES_OFF is set is
// an invariant violation, treated as a programming fault rather than a
// recoverable condition.
func (a *Adapter) armWriteEvent() {
	if a.flags&FlagWritesOff != 0 {
		panic(fmt.Sprintf("beadapter: attempted to arm CONN_WRITE while WRITES_OFF on adapter %q", a.name))
	}
	if _, armed := a.eventHandles[eventloop.EventConnWrite]; armed {
		return
	}
	h := a.deps.EventLoop.ArmWrite(a.fd, a.onConnWrite)
	a.armEvent(eventloop.EventConnWrite, h)
}

func (a *Adapter) scheduleConnInit(delay time.Duration) {
	h := a.deps.EventLoop.After(delay, a.onConnInit)
	a.armEvent(eventloop.EventConnInit, h)
}

func (a *Adapter) scheduleWritesOn() {
	h := a.deps.EventLoop.After(a.tunables.WritesOnDelay, a.onWritesOn)
	a.armEvent(eventloop.EventWritesOn, h)
}

// scheduleProcMsg arms PROC_MSG: immediately (the loop's next turn) when a
// CONN_READ just found complete frames, or after the fixed delay when a
// prior PROC_MSG batch left frames buffered.
func (a *Adapter) scheduleProcMsg(immediate bool) {
	var h eventloop.Handle
	if immediate {
		h = a.deps.EventLoop.Schedule(a.onProcMsg)
	} else {
		h = a.deps.EventLoop.After(a.tunables.ProcMsgDelay, a.onProcMsg)
	}
	a.armEvent(eventloop.EventProcMsg, h)
}
