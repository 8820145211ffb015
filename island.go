package kinetic

import (
	"github.com/akmonengine/kinetic/actor"
)

// unionFind groups body slots. The smaller slot always becomes the root so
// islands come out in a stable order.
type unionFind struct {
	parent []int32
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int32, n)}
	for i := range u.parent {
		u.parent[i] = int32(i)
	}
	return u
}

func (u *unionFind) find(i int) int {
	for int(u.parent[i]) != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = int(u.parent[i])
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	switch {
	case ra < rb:
		u.parent[rb] = int32(ra)
	case rb < ra:
		u.parent[ra] = int32(rb)
	}
}

type islandMember struct {
	handle BodyHandle
	body   *actor.Dynamic
}

// islands is the partition of the dynamic bodies for one step.
// Kinematic bodies are islands of their own; they are kept aside, along with
// the kinematic neighbours of every dynamic island.
type islands struct {
	members    [][]islandMember
	neighbours [][]*actor.Kinematic
	// of maps a body slot to its island, -1 for non-dynamic slots.
	of []int

	dynamics   []*actor.Dynamic
	kinematics []islandKinematic
}

type islandKinematic struct {
	handle BodyHandle
	body   *actor.Kinematic
}

// buildIslands runs the union-find over the links of graph. Links to static
// bodies do not connect anything; links to released bodies are dropped.
func (w *World) buildIslands(graph Graph) islands {
	n := w.bodies.Cap()
	uf := newUnionFind(n)

	type kinematicLink struct {
		slot int
		body *actor.Kinematic
	}
	var kinematicLinks []kinematicLink

	for _, link := range graph {
		a, okA := w.bodies.Get(link.A)
		b, okB := w.bodies.Get(link.B)
		if !okA || !okB {
			w.logger.Warn("link references a released body", "a", link.A, "b", link.B, "kind", link.Kind)
			continue
		}

		switch {
		case a.Kind() == actor.KindDynamic && b.Kind() == actor.KindDynamic:
			uf.union(link.A.Index(), link.B.Index())
		case a.Kind() == actor.KindDynamic && b.Kind() == actor.KindKinematic:
			kinematicLinks = append(kinematicLinks, kinematicLink{slot: link.A.Index(), body: b.(*actor.Kinematic)})
		case a.Kind() == actor.KindKinematic && b.Kind() == actor.KindDynamic:
			kinematicLinks = append(kinematicLinks, kinematicLink{slot: link.B.Index(), body: a.(*actor.Kinematic)})
		}
	}

	isl := islands{of: make([]int, n)}
	rootIsland := make([]int, n)
	for i := range n {
		isl.of[i] = -1
		rootIsland[i] = -1
	}

	for h, body := range w.bodies.All() {
		switch b := body.(type) {
		case *actor.Dynamic:
			root := uf.find(h.Index())
			id := rootIsland[root]
			if id < 0 {
				id = len(isl.members)
				rootIsland[root] = id
				isl.members = append(isl.members, nil)
				isl.neighbours = append(isl.neighbours, nil)
			}
			isl.members[id] = append(isl.members[id], islandMember{handle: h, body: b})
			isl.of[h.Index()] = id
			isl.dynamics = append(isl.dynamics, b)
		case *actor.Kinematic:
			isl.kinematics = append(isl.kinematics, islandKinematic{handle: h, body: b})
		}
	}

	for _, link := range kinematicLinks {
		id := isl.of[link.slot]
		isl.neighbours[id] = append(isl.neighbours[id], link.body)
	}

	return isl
}

// resolveIslands runs at the start of a step. An island whose members are
// all sleeping or about to, with no kinematic neighbour about to move,
// commits to sleep. Any other island is awake as a whole.
func (w *World) resolveIslands(isl islands) {
	for id, members := range isl.members {
		quiet := !anyPendingMotion(isl.neighbours[id])
		for _, m := range members {
			if !m.body.IsSleeping() && !m.body.IsSleepPending() {
				quiet = false
				break
			}
		}

		for _, m := range members {
			if quiet {
				if m.body.CommitSleep() {
					w.logger.Debug("body asleep", "body", m.handle, "name", m.body.Name())
				}
			} else if m.body.WakeByNeighbour() {
				w.logger.Debug("body woken by its island", "body", m.handle, "name", m.body.Name())
			}
		}
	}

	for _, k := range isl.kinematics {
		if k.body.CommitSleep() {
			w.logger.Debug("body asleep", "body", k.handle, "name", k.body.Name())
		}
	}
}

// evaluateSleep runs after integration. An island falls asleep when every
// member counted down to zero and no kinematic neighbour moved this step.
func (w *World) evaluateSleep(isl islands) {
	for id, members := range isl.members {
		ready := !anyMoved(isl.neighbours[id])
		// every counter must be updated, no early exit
		for _, m := range members {
			if !m.body.UpdateWakeCounter() {
				ready = false
			}
		}
		if ready {
			for _, m := range members {
				m.body.MarkSleepPending()
			}
		}
	}

	for _, k := range isl.kinematics {
		if k.body.UpdateWakeCounter() {
			k.body.MarkSleepPending()
		}
	}
}

func anyPendingMotion(kinematics []*actor.Kinematic) bool {
	for _, k := range kinematics {
		if k.HasPendingMotion() {
			return true
		}
	}
	return false
}

func anyMoved(kinematics []*actor.Kinematic) bool {
	for _, k := range kinematics {
		if k.Moved() {
			return true
		}
	}
	return false
}

// groupOf returns the island of h from the last step, or nil when h was not
// part of it.
func (isl islands) groupOf(h BodyHandle) []islandMember {
	idx := h.Index()
	if idx >= len(isl.of) || isl.of[idx] < 0 {
		return nil
	}
	members := isl.members[isl.of[idx]]
	for _, m := range members {
		if m.handle == h {
			return members
		}
	}
	return nil
}
