package jogger

import "sync"

// Overflow policies for a bounded queue, applied when flushing cannot keep
// pace with callers.
const (
	OverflowDropNewest = "drop_newest" // reject the incoming entry, count it
	OverflowDropOldest = "drop_oldest" // evict the oldest queued entry, count it
	OverflowBlock      = "block"       // block the caller until space frees up
)

// entryQueue holds pending entries in FIFO order, shared across all caller
// goroutines. Entries leave only as one atomic batch via drainAll.
type entryQueue struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	entries  []Entry
	capacity int // <= 0 means unbounded
	policy   string
}

func newEntryQueue(capacity int, policy string) *entryQueue {
	q := &entryQueue{
		capacity: capacity,
		policy:   policy,
	}
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// append adds an entry, preserving FIFO order of non-racing calls. The return
// value is the number of entries lost to the overflow policy: the incoming
// one under drop-newest, the evicted one under drop-oldest.
func (q *entryQueue) append(e Entry) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity > 0 && len(q.entries) >= q.capacity {
		switch q.policy {
		case OverflowBlock:
			for len(q.entries) >= q.capacity {
				q.notFull.Wait()
			}
		case OverflowDropOldest:
			q.entries = q.entries[1:]
			q.entries = append(q.entries, e)
			return 1
		default:
			return 1
		}
	}

	q.entries = append(q.entries, e)
	return 0
}

// drainAll atomically removes and returns every queued entry as one ordered
// batch. Appends racing with a drain land either in the batch or in the now
// empty queue, never lost and never duplicated.
func (q *entryQueue) drainAll() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	batch := q.entries
	q.entries = nil
	q.notFull.Broadcast()
	return batch
}

func (q *entryQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
