package react_test

import (
	"fmt"

	"github.com/plus3/cobweb/ecs"
	"github.com/plus3/cobweb/react"
)

type Door struct {
	Open bool
}

type Knock struct {
	Visitor string
}

// DoorLogger prints every door that changes state
type DoorLogger struct {
	Changed react.MutationEvent[Door]
}

func (s *DoorLogger) Execute(frame *ecs.UpdateFrame) {
	e, ok := s.Changed.Read()
	if !ok {
		return
	}
	door, _ := react.Read[Door](frame.World, e)
	fmt.Println("door open:", door.Open)
}

// ExampleOn registers a reactor for mutations of a reactive component.
// Reactions run before the mutating call returns.
func ExampleOn() {
	w := ecs.NewWorld(ecs.NewComponentRegistry())
	react.Install(w)

	react.On(w, react.Mutation[Door](), &DoorLogger{})

	door := w.Spawn()
	react.Insert(w, door, Door{})
	react.SetIfNeq(w, door, Door{Open: true})
	react.SetIfNeq(w, door, Door{Open: true})
	react.SetIfNeq(w, door, Door{Open: false})

	// Output:
	// door open: true
	// door open: false
}

// ExampleSendEntityEvent delivers an event to the reactors of one entity.
// Knocks on other doors are not seen.
func ExampleSendEntityEvent() {
	w := ecs.NewWorld(ecs.NewComponentRegistry())
	react.Install(w)

	front := w.Spawn()
	back := w.Spawn()

	knocks := react.NewEntityEvent[Knock](w)
	react.OnCleanup(w, react.EntityEventTrigger[Knock](front), ecs.SystemFunc(func(*ecs.UpdateFrame) {
		_, knock, _ := knocks.Read()
		fmt.Println("front door:", knock.Visitor)
	}))

	react.SendEntityEvent(w, front, Knock{Visitor: "postman"})
	react.SendEntityEvent(w, back, Knock{Visitor: "neighbour"})

	// Output:
	// front door: postman
}

// ExampleOnce shows a reactor that revokes itself after its first run and
// is despawned once the kernel collects it.
func ExampleOnce() {
	w := ecs.NewWorld(ecs.NewComponentRegistry())
	react.Install(w)

	token := react.Once(w, react.BroadcastTrigger[string](), ecs.SystemFunc(func(*ecs.UpdateFrame) {
		fmt.Println("first broadcast")
	}))

	react.Broadcast(w, "a")
	react.Broadcast(w, "b")
	react.Tick(w)

	fmt.Println("registered:", react.IsRegistered(w, token.ID))

	// Output:
	// first broadcast
	// registered: false
}
