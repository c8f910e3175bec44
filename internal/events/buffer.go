package events

import "sync"

type message struct {
	Kind string
	Data []byte
	next *message
}

// buffer is a FIFO of pending messages.
type buffer struct {
	lock sync.Mutex
	head *message
	tail *message
	size int
}

func newBuffer() *buffer {
	return &buffer{}
}

func (b *buffer) PushBack(msg *message) int {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.head == nil {
		b.head = msg
		b.tail = msg
	} else {
		b.tail.next = msg
		b.tail = msg
	}
	b.size++

	return b.size
}

func (b *buffer) Pop() *message {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.head == nil {
		return nil
	}
	tmp := b.head
	b.head = b.head.next
	if b.head == nil {
		// removing the last one
		b.tail = nil
	}
	tmp.next = nil
	b.size--
	return tmp
}

func (b *buffer) Size() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.size
}
