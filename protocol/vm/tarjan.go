package vm

import "github.com/onyx-protocol/neovm/protocol/vm/stackitem"

// tarjan partitions vertices into strongly connected
// components, following edges from each item to the
// containers that hold it. Components are returned in the
// order they complete, which puts every container's component
// before those of the items it holds. The walk uses an
// explicit stack; container graphs can be deep.
//
// Every vertex must have been Reset beforehand.
func tarjan(vertices []stackitem.Tracked) []component {
	var (
		index  int
		stack  []stackitem.Tracked
		result []component
		frames []tarjanFrame
	)

	visit := func(v stackitem.Tracked) {
		tr := v.Track()
		tr.DFN = index
		tr.LowLink = index
		index++
		tr.OnStack = true
		stack = append(stack, v)
		frames = append(frames, tarjanFrame{v: v, succ: successors(v)})
	}

	for _, root := range vertices {
		if root.Track().DFN >= 0 {
			continue
		}
		visit(root)
		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			vt := f.v.Track()
			if f.i < len(f.succ) {
				w := f.succ[f.i]
				f.i++
				wt := w.Track()
				if wt.DFN < 0 {
					visit(w)
				} else if wt.OnStack && wt.DFN < vt.LowLink {
					vt.LowLink = wt.DFN
				}
				continue
			}

			if vt.LowLink == vt.DFN {
				var c component
				for {
					w := stack[len(stack)-1]
					stack[len(stack)-1] = nil
					stack = stack[:len(stack)-1]
					w.Track().OnStack = false
					c = append(c, w)
					if w == f.v {
						break
					}
				}
				result = append(result, c)
			}
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				pt := frames[len(frames)-1].v.Track()
				if vt.LowLink < pt.LowLink {
					pt.LowLink = vt.LowLink
				}
			}
		}
	}
	return result
}

type tarjanFrame struct {
	v    stackitem.Tracked
	succ []stackitem.Tracked
	i    int
}

func successors(v stackitem.Tracked) []stackitem.Tracked {
	var succ []stackitem.Tracked
	for parent, n := range v.Track().ObjectRefs {
		if n > 0 {
			succ = append(succ, parent)
		}
	}
	return succ
}
