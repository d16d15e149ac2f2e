// Package queue provides a durable, disk-backed FIFO of recorded APDU
// commands. The simulator drains it in enqueue order, which is exactly
// the delivery contract the card dispatcher guarantees: one APDU at a
// time, in call order. Recording sessions to disk also gives integration
// tests a deterministic replay source.
package queue

import (
	"fmt"

	"github.com/beeker1121/goque"

	"github.com/cardsim/termauth/ta"
)

// Record is the persisted form of one incoming APDU.
type Record struct {
	INS            byte
	P1P2           uint16
	Data           []byte
	SecureMessaged bool
}

// FromCommand converts an APDU command into its persisted form.
func FromCommand(cmd ta.Command) Record {
	return Record{INS: cmd.INS, P1P2: cmd.P1P2, Data: cmd.Data, SecureMessaged: cmd.SecureMessaged}
}

// Command converts a persisted record back into an APDU command.
func (r Record) Command() ta.Command {
	return ta.Command{INS: r.INS, P1P2: r.P1P2, Data: r.Data, SecureMessaged: r.SecureMessaged}
}

// Recorder is a durable FIFO of Records rooted at a directory on disk.
// It is safe for one writer and one reader; goque serializes access
// internally.
type Recorder struct {
	q *goque.Queue
}

// Open opens (or creates) the queue rooted at dir.
func Open(dir string) (*Recorder, error) {
	q, err := goque.OpenQueue(dir)
	if err != nil {
		return nil, fmt.Errorf("queue: opening %s: %w", dir, err)
	}
	return &Recorder{q: q}, nil
}

// Enqueue appends rec to the tail of the queue.
func (r *Recorder) Enqueue(rec Record) error {
	if _, err := r.q.EnqueueObject(rec); err != nil {
		return fmt.Errorf("queue: enqueueing: %w", err)
	}
	return nil
}

// Dequeue removes and returns the record at the head of the queue. The
// second return value is false when the queue is empty.
func (r *Recorder) Dequeue() (Record, bool, error) {
	item, err := r.q.Dequeue()
	if err == goque.ErrEmpty {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("queue: dequeueing: %w", err)
	}
	var rec Record
	if err := item.ToObject(&rec); err != nil {
		return Record{}, false, fmt.Errorf("queue: decoding record: %w", err)
	}
	return rec, true, nil
}

// Length returns the number of records currently queued.
func (r *Recorder) Length() uint64 {
	return r.q.Length()
}

// Close releases the queue's underlying storage.
func (r *Recorder) Close() {
	r.q.Close()
}
