package symbols

import (
	"quill/internal/source"
)

// sweepBatch: сколько откатов помещается в один буфер.
const sweepBatch = 10

// undo restores one binding slot.
type undo struct {
	ns        *Namespace
	table     Table
	id        source.StringID
	prev      Object
	prevDepth int
	created   bool
}

// sweep is a fixed-size batch of undo records owned by a scope frame.
type sweep struct {
	entries [sweepBatch]undo
	n       int
}

type sweepPool struct {
	free []*sweep
}

func (p *sweepPool) get() *sweep {
	if n := len(p.free); n > 0 {
		s := p.free[n-1]
		p.free = p.free[:n-1]
		return s
	}
	return &sweep{}
}

func (p *sweepPool) put(s *sweep) {
	clear(s.entries[:s.n])
	s.n = 0
	p.free = append(p.free, s)
}

// record appends u to the frame's newest sweep, starting a new one when full.
func (f *frame) record(pool *sweepPool, u undo) {
	if len(f.sweeps) == 0 || f.sweeps[len(f.sweeps)-1].n == sweepBatch {
		f.sweeps = append(f.sweeps, pool.get())
	}
	s := f.sweeps[len(f.sweeps)-1]
	s.entries[s.n] = u
	s.n++
}

// replay undoes every record, most recent first, and recycles the buffers.
func (f *frame) replay(pool *sweepPool) {
	for i := len(f.sweeps) - 1; i >= 0; i-- {
		s := f.sweeps[i]
		for j := s.n - 1; j >= 0; j-- {
			u := &s.entries[j]
			if u.created {
				u.ns.drop(u.table, u.id)
				continue
			}
			if n := u.ns.Entry(u.table, u.id); n != nil {
				n.Object = u.prev
				n.Depth = u.prevDepth
			}
		}
		pool.put(s)
	}
	f.sweeps = f.sweeps[:0]
}
