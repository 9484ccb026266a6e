package regioncore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/oriumgames/regioncore/archive"
	"github.com/oriumgames/regioncore/format"
	"github.com/oriumgames/regioncore/internal/logging"
)

type counterPayload struct {
	N int
}

func (p *counterPayload) MarshalBinary(buf *format.Buffer) error {
	return buf.WriteVarInt(int64(p.N))
}

func (p *counterPayload) UnmarshalBinary(r *format.Reader) error {
	n, err := r.ReadVarInt()
	if err != nil {
		return err
	}
	p.N = int(n)
	return nil
}

func counterCodec() archive.Codec[*counterPayload] {
	return archive.BinaryCodec[*counterPayload]{New: func() *counterPayload { return &counterPayload{} }}
}

func TestRegionWorker_SaveThenLoad(t *testing.T) {
	// arrange
	dir := t.TempDir()
	w := StartRegionWorker(dir, RegionCoord{}, counterCodec(), logging.New())
	defer func() {
		w.Stop()
		<-w.Done()
	}()

	// act
	saveReply := make(chan error, 1)
	w.Save(3, &counterPayload{N: 99}, saveReply)
	if err := <-saveReply; err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loadReply := make(chan LoadResult[*counterPayload], 1)
	w.Load(3, loadReply)
	result := <-loadReply

	// assert
	if result.Err != nil {
		t.Fatalf("Load() error = %v", result.Err)
	}
	if !result.Found {
		t.Fatalf("Load() Found = false, want true")
	}
	if result.Value.N != 99 {
		t.Errorf("Load() value = %d, want 99", result.Value.N)
	}
}

func TestRegionWorker_CommandsAreFIFO(t *testing.T) {
	// arrange
	dir := t.TempDir()
	w := StartRegionWorker(dir, RegionCoord{}, counterCodec(), logging.New())
	defer func() {
		w.Stop()
		<-w.Done()
	}()

	// act: fire off several saves to the same cell without waiting for
	// their replies; the last one queued must be the one a subsequent load
	// observes.
	for i := 0; i < 5; i++ {
		reply := make(chan error, 1)
		w.Save(1, &counterPayload{N: i}, reply)
	}
	loadReply := make(chan LoadResult[*counterPayload], 1)
	w.Load(1, loadReply)
	result := <-loadReply

	// assert
	if result.Value.N != 4 {
		t.Errorf("Load() value = %d, want 4", result.Value.N)
	}
}

func TestRegionWorker_SaveDoesNotBlockCaller(t *testing.T) {
	// arrange
	dir := t.TempDir()
	w := StartRegionWorker(dir, RegionCoord{}, counterCodec(), logging.New())
	defer func() {
		w.Stop()
		<-w.Done()
	}()

	// act: queue a batch of saves back-to-back without ever reading their
	// replies in between. Since pushing onto the command queue only
	// appends to a slice, every call must return immediately regardless of
	// how far behind the worker's own disk I/O is.
	const n = 50
	replies := make([]chan error, n)
	done := make(chan struct{})
	go func() {
		for i := 0; i < n; i++ {
			replies[i] = make(chan error, 1)
			w.Save(2, &counterPayload{N: i}, replies[i])
		}
		close(done)
	}()

	// assert
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("queuing %d saves did not return within 2s; Save appears to block", n)
	}
	for i, reply := range replies {
		if err := <-reply; err != nil {
			t.Fatalf("Save(%d) error = %v", i, err)
		}
	}
}

func TestRegionWorker_StopClosesDone(t *testing.T) {
	// arrange
	dir := t.TempDir()
	w := StartRegionWorker(dir, RegionCoord{}, counterCodec(), logging.New())

	// act
	w.Stop()

	// assert
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("Done() did not close within 2s of Stop()")
	}
}

func TestRegionWorker_OpenFailureExitsWithoutProcessing(t *testing.T) {
	// arrange: point the worker at a path that cannot be a directory
	// (a file sitting where the region directory needs to be).
	dir := t.TempDir()
	blocker := dir + "/blocked"
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	w := StartRegionWorker(blocker+"/nested", RegionCoord{}, counterCodec(), logging.New())

	// act
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not exit after archive-open failure")
	}

	// assert: a load queued after the worker has already exited is never
	// popped by anything, so its reply channel never receives; verify the
	// worker truly stopped processing by checking Done is closed (covered
	// above) rather than attempting a load here.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	<-ctx.Done()
}
