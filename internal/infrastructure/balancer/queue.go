package balancer

// deferredQueue is a ring-buffer queue holding the IDs of tasks deferred for
// lack of capacity. It is advisory state, not a retry scheduler: the engine
// never dequeues automatically, re-submission is the caller's responsibility.
// No internal lock; the queue lives inside WorkloadState, which has a single
// owner.
type deferredQueue struct {
	buffer   []string
	head     int
	tail     int
	count    int
	capacity int
}

func newDeferredQueue(initialCapacity int) *deferredQueue {
	if initialCapacity < 1 {
		initialCapacity = 16
	}
	return &deferredQueue{
		buffer:   make([]string, initialCapacity),
		capacity: initialCapacity,
	}
}

func (q *deferredQueue) len() int {
	return q.count
}

func (q *deferredQueue) grow() {
	newCapacity := q.capacity * 2
	newBuffer := make([]string, newCapacity)
	for i := 0; i < q.count; i++ {
		newBuffer[i] = q.buffer[(q.head+i)%q.capacity]
	}
	q.buffer = newBuffer
	q.head = 0
	q.tail = q.count
	q.capacity = newCapacity
}

func (q *deferredQueue) pushBack(taskID string) {
	if q.count == q.capacity {
		q.grow()
	}
	q.buffer[q.tail] = taskID
	q.tail = (q.tail + 1) % q.capacity
	q.count++
}

func (q *deferredQueue) popFront() (string, bool) {
	if q.count == 0 {
		return "", false
	}
	id := q.buffer[q.head]
	q.buffer[q.head] = ""
	q.head = (q.head + 1) % q.capacity
	q.count--
	return id, true
}

// items returns the queued IDs in FIFO order.
func (q *deferredQueue) items() []string {
	out := make([]string, q.count)
	for i := 0; i < q.count; i++ {
		out[i] = q.buffer[(q.head+i)%q.capacity]
	}
	return out
}
