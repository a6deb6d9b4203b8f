package react

import (
	"fmt"

	"github.com/petermattis/goid"

	"github.com/plus3/cobweb/ecs"
)

// ReactionTree runs queued system commands, events and reactions until all
// queues are empty. Every system command runs before the next event and
// every event before the next reaction. Calls made while a tree is running
// return immediately; the running tree picks up their work.
func ReactionTree(w *ecs.World) {
	KernelOf(w).reactionTree(w)
}

func (k *Kernel) reactionTree(w *ecs.World) {
	if !k.cache.startReactionTree() {
		if id := goid.Get(); id != k.owner {
			panic(fmt.Sprintf("react: reaction tree entered from goroutine %d while goroutine %d owns it", id, k.owner))
		}
		return
	}
	k.owner = goid.Get()

	reactions := k.reactions.remove()
	events := k.events.remove()

	// Removals and despawns are handled even if the command that started
	// the tree never runs.
	k.safePoint(w)

	for {
		for {
			for {
				command, ok := k.syscommands.popFront()
				if !ok {
					break
				}
				k.runSystemCommand(w, command, nil, nil)
			}

			events = k.events.appendAndRemove(events)
			event, ok := events.popFront()
			if !ok {
				break
			}
			k.runEvent(w, event)
		}

		reactions = k.reactions.appendAndRemove(reactions)
		reaction, ok := reactions.popFront()
		if !ok {
			break
		}
		k.runReaction(w, reaction)
	}

	k.events.append(events)
	k.reactions.append(reactions)

	k.owner = 0
	k.cache.endReactionTree()
}

// InReactionTree reports whether a reaction tree is running
func (k *Kernel) InReactionTree() bool {
	return k.cache.inReactionTree
}
