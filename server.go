package regioncore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oriumgames/regioncore/archive"
	"github.com/oriumgames/regioncore/internal/logging"
)

// ArchiveServer maps world chunk coordinates onto lazily-spawned,
// per-region RegionWorkers. Callers never touch an Archive directly; they
// go through ArchiveServer's Handle-returning methods instead.
type ArchiveServer[T any] struct {
	prefix string
	codec  archive.Codec[T]
	log    *logging.Logger

	mu      sync.Mutex
	workers map[RegionCoord]*RegionWorker[T]
}

// NewArchiveServer returns a server that stores region files named
// "<rx>_<rz>.rgn" under dir.
func NewArchiveServer[T any](dir string, codec archive.Codec[T], log *logging.Logger) *ArchiveServer[T] {
	if log == nil {
		log = logging.New()
	}
	prefix := dir
	if prefix != "" && !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	_ = os.MkdirAll(dir, 0o755)
	return &ArchiveServer[T]{
		prefix:  prefix,
		codec:   codec,
		log:     log,
		workers: make(map[RegionCoord]*RegionWorker[T]),
	}
}

func (s *ArchiveServer[T]) workerFor(region RegionCoord) *RegionWorker[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.workers[region]; ok {
		return w
	}
	w := StartRegionWorker(s.prefix, region, s.codec, s.log)
	s.workers[region] = w
	return w
}

// Handle is a pollable reply to a Load or Save request: non-blocking
// TryResult lets a caller interleave other work, and the Wait convenience
// blocks (respecting ctx) for callers that have nothing better to do.
type Handle[T any] struct {
	load <-chan LoadResult[T]
	err  <-chan error
}

// TryResult returns the worker's answer if it has arrived yet. ready is
// false if the worker hasn't replied; callers should poll again later.
func (h Handle[T]) TryResult() (result LoadResult[T], ready bool) {
	select {
	case r, ok := <-h.load:
		if !ok {
			return LoadResult[T]{Err: &loadChannelClosedError{}}, true
		}
		return r, true
	default:
		return LoadResult[T]{}, false
	}
}

// TryErr is the Save/FlushHeader analogue of TryResult.
func (h Handle[T]) TryErr() (err error, ready bool) {
	select {
	case e, ok := <-h.err:
		if !ok {
			return &loadChannelClosedError{}, true
		}
		return e, true
	default:
		return nil, false
	}
}

// Wait blocks until the worker replies or ctx is done.
func (h Handle[T]) Wait(ctx context.Context) (LoadResult[T], error) {
	select {
	case r, ok := <-h.load:
		if !ok {
			return LoadResult[T]{}, &loadChannelClosedError{}
		}
		return r, nil
	case <-ctx.Done():
		return LoadResult[T]{}, ctx.Err()
	}
}

// WaitErr is the Save/FlushHeader analogue of Wait.
func (h Handle[T]) WaitErr(ctx context.Context) error {
	select {
	case e, ok := <-h.err:
		if !ok {
			return &loadChannelClosedError{}
		}
		return e
	case <-ctx.Done():
		return ctx.Err()
	}
}

type loadChannelClosedError struct{}

func (*loadChannelClosedError) Error() string {
	return "region worker exited before replying"
}

// LoadChunk asks the owning region's worker to load coord, spawning that
// region's worker if it is not already running.
func (s *ArchiveServer[T]) LoadChunk(coord WorldChunkCoord) Handle[T] {
	w := s.workerFor(coord.ToRegion())
	reply := make(chan LoadResult[T], 1)
	w.Load(coord.ToLocal().Index(), reply)
	return Handle[T]{load: reply}
}

// SaveChunk asks the owning region's worker to store value at coord,
// spawning that region's worker if needed.
func (s *ArchiveServer[T]) SaveChunk(coord WorldChunkCoord, value T) Handle[T] {
	w := s.workerFor(coord.ToRegion())
	reply := make(chan error, 1)
	w.Save(coord.ToLocal().Index(), value, reply)
	return Handle[T]{err: reply}
}

// DoMaintenance flushes every live region worker's header to disk and
// waits for all of them to confirm before returning.
func (s *ArchiveServer[T]) DoMaintenance(ctx context.Context) []error {
	s.mu.Lock()
	workers := make([]*RegionWorker[T], 0, len(s.workers))
	for _, w := range s.workers {
		workers = append(workers, w)
	}
	s.mu.Unlock()

	if len(workers) == 0 {
		return nil
	}

	replies := make([]chan error, len(workers))
	for i, w := range workers {
		reply := make(chan error, 1)
		replies[i] = reply
		w.FlushHeader(reply)
	}

	errs := make([]error, len(workers))
	for i, reply := range replies {
		h := Handle[T]{err: reply}
		errs[i] = h.WaitErr(ctx)
	}
	return errs
}

// RemoveWorker drops the worker for region from the server, if one is
// running, tells it to stop, and detaches a goroutine that waits for it to
// finish exiting; RemoveWorker itself returns without waiting.
func (s *ArchiveServer[T]) RemoveWorker(region RegionCoord) {
	s.mu.Lock()
	w, ok := s.workers[region]
	if ok {
		delete(s.workers, region)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	w.Stop()
	go func() { <-w.Done() }()
}
