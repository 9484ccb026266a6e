package regioncore

import (
	"strconv"
	"sync"

	"github.com/oriumgames/regioncore/archive"
	"github.com/oriumgames/regioncore/internal/logging"
)

// LoadResult is the answer to a Load command.
type LoadResult[T any] struct {
	Value T
	Found bool
	Err   error
}

type cmdKind uint8

const (
	cmdLoad cmdKind = iota
	cmdSave
	cmdFlushHeader
	cmdStop
)

// command is the single envelope type RegionWorker's queue carries, one
// field set used per Kind. Every non-Stop command carries a one-shot reply
// channel.
type command[T any] struct {
	kind      cmdKind
	local     int
	value     T
	loadReply chan<- LoadResult[T]
	errReply  chan<- error
}

// cmdQueue is a FIFO queue of commands with no capacity limit: push never
// blocks its caller, unlike a plain Go channel whose capacity (even a large
// one) is still a bound. A mutex-and-condvar-guarded slice backs it rather
// than a channel precisely so push can always append and return.
type cmdQueue[T any] struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []command[T]
}

func newCmdQueue[T any]() *cmdQueue[T] {
	q := &cmdQueue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends cmd and never blocks.
func (q *cmdQueue[T]) push(cmd command[T]) {
	q.mu.Lock()
	q.items = append(q.items, cmd)
	q.mu.Unlock()
	q.cond.Signal()
}

// pop blocks until a command is available.
func (q *cmdQueue[T]) pop() command[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.cond.Wait()
	}
	cmd := q.items[0]
	q.items = q.items[1:]
	return cmd
}

// RegionWorker owns one region's Archive exclusively and serializes every
// operation against it through an unbounded command queue: callers never
// block waiting for the worker to finish its current disk I/O. There is one
// RegionWorker goroutine per region; ArchiveServer spawns them lazily and
// never shares an Archive across two goroutines.
type RegionWorker[T any] struct {
	region RegionCoord
	cmds   *cmdQueue[T]
	done   chan struct{}
}

// StartRegionWorker opens the region file for region (named
// "<prefix><rx>_<rz>.rgn", prefix typically including a trailing path
// separator) and starts its command loop. If opening the archive fails,
// the failure is logged and the worker goroutine exits immediately without
// ever processing a command. Commands sent to it afterwards stay queued and
// are never answered, and ArchiveServer keeps routing its region's requests
// to it until RemoveWorker is called for that region.
func StartRegionWorker[T any](prefix string, region RegionCoord, codec archive.Codec[T], log *logging.Logger) *RegionWorker[T] {
	w := &RegionWorker[T]{
		region: region,
		cmds:   newCmdQueue[T](),
		done:   make(chan struct{}),
	}
	go w.run(prefix, codec, log)
	return w
}

func regionFileName(prefix string, r RegionCoord) string {
	return prefix + strconv.FormatInt(int64(r.X), 10) + "_" + strconv.FormatInt(int64(r.Z), 10) + ".rgn"
}

func (w *RegionWorker[T]) run(prefix string, codec archive.Codec[T], log *logging.Logger) {
	defer close(w.done)

	path := regionFileName(prefix, w.region)
	a, err := archive.Open(path, codec)
	if err != nil {
		log.Error("region %v: open archive: %v", w.region, err)
		return
	}
	defer a.Close()

	for {
		cmd := w.cmds.pop()
		switch cmd.kind {
		case cmdLoad:
			v, ok, err := a.Read(cmd.local)
			cmd.loadReply <- LoadResult[T]{Value: v, Found: ok, Err: err}
		case cmdSave:
			cmd.errReply <- a.Write(cmd.local, cmd.value)
		case cmdFlushHeader:
			cmd.errReply <- a.FlushHeader()
		case cmdStop:
			log.Info("region %v: worker stopped", w.region)
			return
		}
	}
}

// Load requests the payload at local, replying on reply.
func (w *RegionWorker[T]) Load(local int, reply chan<- LoadResult[T]) {
	w.cmds.push(command[T]{kind: cmdLoad, local: local, loadReply: reply})
}

// Save requests that value be stored at local, replying on reply.
func (w *RegionWorker[T]) Save(local int, value T, reply chan<- error) {
	w.cmds.push(command[T]{kind: cmdSave, local: local, value: value, errReply: reply})
}

// FlushHeader requests the region's header be written to disk, replying on
// reply.
func (w *RegionWorker[T]) FlushHeader(reply chan<- error) {
	w.cmds.push(command[T]{kind: cmdFlushHeader, errReply: reply})
}

// Stop requests the worker exit after draining commands queued before Stop.
// It does not wait for the goroutine to actually exit; use Done for that.
func (w *RegionWorker[T]) Stop() {
	w.cmds.push(command[T]{kind: cmdStop})
}

// Done is closed once the worker goroutine has exited, whether from Stop or
// an archive-open failure at startup.
func (w *RegionWorker[T]) Done() <-chan struct{} {
	return w.done
}
