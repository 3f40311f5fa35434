package vm

import "github.com/onyx-protocol/neovm/protocol/vm/stackitem"

// RefCounter counts every live reference to a stack item, from
// evaluation stacks, slots and container elements, and reclaims
// containers that are no longer reachable from any stack even
// when they refer to each other in cycles.
//
// Only containers and buffers are tracked individually;
// primitives contribute to the total and nothing else.
type RefCounter struct {
	count int

	// tracked is kept in insertion order so collection visits
	// items deterministically.
	tracked   []stackitem.Tracked
	trackedAt map[stackitem.Tracked]int

	zeroReferred map[stackitem.Tracked]struct{}

	// components caches the strongly connected components of
	// the tracked graph between collections. It is invalidated
	// by any change to a parent link.
	components []component
	cached     bool
}

type component []stackitem.Tracked

// NewRefCounter returns an empty counter.
func NewRefCounter() *RefCounter {
	return &RefCounter{
		trackedAt:    make(map[stackitem.Tracked]int),
		zeroReferred: make(map[stackitem.Tracked]struct{}),
	}
}

// Count is the number of live references.
func (r *RefCounter) Count() int { return r.count }

func needTrack(item stackitem.Item) (stackitem.Tracked, bool) {
	switch item := item.(type) {
	case stackitem.Compound:
		return item, true
	case *stackitem.Buffer:
		return item, true
	}
	return nil, false
}

// track adds t to the tracked set, reporting whether it was new.
func (r *RefCounter) track(t stackitem.Tracked) bool {
	if _, ok := r.trackedAt[t]; ok {
		return false
	}
	t.Track().Reset()
	r.trackedAt[t] = len(r.tracked)
	r.tracked = append(r.tracked, t)
	return true
}

func (r *RefCounter) untrack(t stackitem.Tracked) {
	i, ok := r.trackedAt[t]
	if !ok {
		return
	}
	last := len(r.tracked) - 1
	if i != last {
		r.tracked[i] = r.tracked[last]
		r.trackedAt[r.tracked[i]] = i
	}
	r.tracked[last] = nil
	r.tracked = r.tracked[:last]
	delete(r.trackedAt, t)
}

// AddReference records that parent holds item.
func (r *RefCounter) AddReference(item stackitem.Item, parent stackitem.Compound) {
	r.count++
	t, ok := needTrack(item)
	if !ok {
		return
	}
	r.cached, r.components = false, nil
	r.track(t)
	tr := t.Track()
	if tr.ObjectRefs == nil {
		tr.ObjectRefs = make(map[stackitem.Compound]int)
	}
	tr.ObjectRefs[parent]++
}

// RemoveReference records that parent no longer holds item.
func (r *RefCounter) RemoveReference(item stackitem.Item, parent stackitem.Compound) {
	r.count--
	t, ok := needTrack(item)
	if !ok {
		return
	}
	r.cached, r.components = false, nil
	tr := t.Track()
	tr.ObjectRefs[parent]--
	if tr.StackRefs == 0 {
		r.zeroReferred[t] = struct{}{}
	}
}

// AddStackReference records n references to item from stacks
// or slots.
func (r *RefCounter) AddStackReference(item stackitem.Item, n int) {
	r.count += n
	t, ok := needTrack(item)
	if !ok {
		return
	}
	if r.track(t) && r.cached {
		r.components = append(r.components, component{t})
	}
	t.Track().StackRefs += n
	delete(r.zeroReferred, t)
}

// RemoveStackReference drops one stack or slot reference.
func (r *RefCounter) RemoveStackReference(item stackitem.Item) {
	r.count--
	t, ok := needTrack(item)
	if !ok {
		return
	}
	tr := t.Track()
	tr.StackRefs--
	if tr.StackRefs == 0 {
		r.zeroReferred[t] = struct{}{}
	}
}

// AddZeroReferred registers a newly created item that nothing
// refers to yet. It is collected at the next check unless a
// reference arrives first.
func (r *RefCounter) AddZeroReferred(item stackitem.Item) {
	t, ok := needTrack(item)
	if !ok {
		return
	}
	r.zeroReferred[t] = struct{}{}
	if r.track(t) && r.cached {
		r.components = append(r.components, component{t})
	}
}

// CheckZeroReferred releases every tracked component that is
// not reachable from a stack reference and returns the
// remaining count. It does nothing unless some item has lost
// its last stack reference since the previous check.
func (r *RefCounter) CheckZeroReferred() int {
	if len(r.zeroReferred) == 0 {
		return r.count
	}
	r.zeroReferred = make(map[stackitem.Tracked]struct{})
	if !r.cached {
		r.components = tarjan(r.tracked)
		r.cached = true
	}
	for _, t := range r.tracked {
		t.Track().Reset()
	}

	// Components arrive with every parent's component ahead
	// of its children's, so a parent's OnStack is final by the
	// time its children are examined.
	kept := r.components[:0]
	for _, c := range r.components {
		if c.onStack() {
			for _, t := range c {
				t.Track().OnStack = true
			}
			kept = append(kept, c)
			continue
		}
		r.release(c)
	}
	for i := len(kept); i < len(r.components); i++ {
		r.components[i] = nil
	}
	r.components = kept
	return r.count
}

func (c component) onStack() bool {
	for _, t := range c {
		tr := t.Track()
		if tr.StackRefs > 0 {
			return true
		}
		for parent, n := range tr.ObjectRefs {
			if n > 0 && parent.Track().OnStack {
				return true
			}
		}
	}
	return false
}

func (r *RefCounter) release(c component) {
	var members map[stackitem.Tracked]bool
	if len(c) > 1 {
		members = make(map[stackitem.Tracked]bool, len(c))
		for _, t := range c {
			members[t] = true
		}
	}
	for _, t := range c {
		r.untrack(t)
		if compound, ok := t.(stackitem.Compound); ok {
			sub := compound.SubItems()
			r.count -= len(sub)
			for _, item := range sub {
				st, ok := needTrack(item)
				if !ok || st == t || members[st] {
					continue
				}
				delete(st.Track().ObjectRefs, compound)
			}
		}
		tr := t.Track()
		tr.ObjectRefs = nil
		tr.StackRefs = 0
	}
}
