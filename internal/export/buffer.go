package export

import "io"

// RowBuffer accumulates serialized rows and writes them to a sink in batches.
//
// An append that would push the buffered bytes past Capacity flushes first,
// so the buffer only exceeds Capacity when a single row is larger than it;
// such a row is written straight through. The buffer also flushes every
// RowsPerFlush rows.
type RowBuffer struct {
	w            io.Writer
	buf          []byte
	capacity     int
	rowsPerFlush int
	pending      int

	flushes int
	written int64

	// onFlush, when set, sees the size of every sink write.
	onFlush func(n int)
}

// NewRowBuffer creates a buffer that writes to w on plan's schedule.
func NewRowBuffer(w io.Writer, plan Plan) *RowBuffer {
	capacity := max(1, plan.Capacity)
	return &RowBuffer{
		w:            w,
		buf:          make([]byte, 0, capacity),
		capacity:     capacity,
		rowsPerFlush: max(1, plan.RowsPerFlush),
	}
}

// Append buffers one serialized row.
func (b *RowBuffer) Append(line []byte) error {
	if len(b.buf) > 0 && len(b.buf)+len(line) > b.capacity {
		if err := b.Flush(); err != nil {
			return err
		}
	}

	if len(line) > b.capacity {
		return b.write(line)
	}

	b.buf = append(b.buf, line...)
	b.pending++
	if b.pending >= b.rowsPerFlush {
		return b.Flush()
	}
	return nil
}

// Flush writes any buffered rows to the sink.
func (b *RowBuffer) Flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	err := b.write(b.buf)
	b.buf = b.buf[:0]
	b.pending = 0
	return err
}

func (b *RowBuffer) write(p []byte) error {
	n, err := b.w.Write(p)
	b.written += int64(n)
	b.flushes++
	if b.onFlush != nil {
		b.onFlush(n)
	}
	return err
}

// Len returns the number of buffered bytes.
func (b *RowBuffer) Len() int { return len(b.buf) }

// Flushes returns the number of sink writes so far.
func (b *RowBuffer) Flushes() int { return b.flushes }

// Written returns the number of bytes accepted by the sink.
func (b *RowBuffer) Written() int64 { return b.written }
