package react

// commandDeque is a FIFO buffer. Popped slots are reclaimed when the deque
// is reset.
type commandDeque[T any] struct {
	items []T
	head  int
}

func (d *commandDeque[T]) push(item T) {
	d.items = append(d.items, item)
}

func (d *commandDeque[T]) popFront() (T, bool) {
	var zero T
	if d.head >= len(d.items) {
		return zero, false
	}
	item := d.items[d.head]
	d.items[d.head] = zero
	d.head++
	if d.head == len(d.items) {
		d.reset()
	}
	return item, true
}

func (d *commandDeque[T]) len() int {
	return len(d.items) - d.head
}

func (d *commandDeque[T]) reset() {
	clear(d.items)
	d.items = d.items[:0]
	d.head = 0
}

// appendFrom moves every item of other to the back of d, leaving other empty
func (d *commandDeque[T]) appendFrom(other *commandDeque[T]) {
	if other.len() > 0 {
		d.items = append(d.items, other.items[other.head:]...)
	}
	other.reset()
}

// commandQueue buffers commands of type T. Removing the inner deque swaps
// in a pooled empty one, so telescoped runs can save and restore queues
// without allocating.
type commandQueue[T any] struct {
	commands   *commandDeque[T]
	buffers    []*commandDeque[T]
	maxBuffers int
}

func newCommandQueue[T any](maxBuffers int) *commandQueue[T] {
	return &commandQueue[T]{
		commands:   &commandDeque[T]{},
		maxBuffers: maxBuffers,
	}
}

// push adds a command to the back of the queue
func (q *commandQueue[T]) push(command T) {
	q.commands.push(command)
}

// popFront removes the command at the front of the queue
func (q *commandQueue[T]) popFront() (T, bool) {
	return q.commands.popFront()
}

// len returns the number of queued commands
func (q *commandQueue[T]) len() int {
	return q.commands.len()
}

// remove takes the inner deque, leaving an empty one in its place
func (q *commandQueue[T]) remove() *commandDeque[T] {
	removed := q.commands
	if n := len(q.buffers); n > 0 {
		q.commands = q.buffers[n-1]
		q.buffers = q.buffers[:n-1]
	} else {
		q.commands = &commandDeque[T]{}
	}
	return removed
}

// append moves the commands of other behind the queued commands and keeps
// other's buffer for reuse.
func (q *commandQueue[T]) append(other *commandDeque[T]) {
	if other == nil {
		return
	}
	q.commands.appendFrom(other)
	if q.maxBuffers <= 0 || len(q.buffers) < q.maxBuffers {
		q.buffers = append(q.buffers, other)
	}
}

// appendAndRemove appends other then removes the whole queue, so commands
// queued since other was removed end up ahead of it.
func (q *commandQueue[T]) appendAndRemove(other *commandDeque[T]) *commandDeque[T] {
	q.append(other)
	return q.remove()
}
