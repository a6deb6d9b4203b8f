package react

import (
	"go.uber.org/zap"

	"github.com/plus3/cobweb/ecs"
)

// bufferedSyscommand is a command whose callback was in use when it was
// invoked. It runs once the outer invocation puts the callback back.
type bufferedSyscommand struct {
	command SystemCommand
	setup   hook
	cleanup hook
}

// safePoint despawns released entities and schedules the removal and
// despawn reactions they caused.
func (k *Kernel) safePoint(w *ecs.World) {
	k.garbageCollect(w)
	k.scheduleRemovalsAndDespawns(w)
}

func (k *Kernel) garbageCollect(w *ecs.World) {
	k.despawner.GarbageCollect(w)
}

func (k *Kernel) scheduleRemovalsAndDespawns(w *ecs.World) {
	k.cache.scheduleRemovals(k, w)
	k.cache.scheduleDespawns(k)
}

// abortCommand runs the hooks of a command that could not run, so any
// prepared tracker state is consumed.
func (k *Kernel) abortCommand(w *ecs.World, setup, cleanup hook) {
	k.stats.Aborted++
	setup.run(w)
	cleanup.run(w)
	k.safePoint(w)
}

// runSystemCommand runs one system command. Commands it queues run before
// it returns; commands queued before it started are put back afterwards.
func (k *Kernel) runSystemCommand(w *ecs.World, command SystemCommand, setup, cleanup hook) {
	depth := k.depth
	k.safePoint(w)

	if !w.Alive(command.Entity()) {
		k.abortCommand(w, setup, cleanup)
		return
	}
	storage := ecs.ReadComponent[SystemCommandStorage](w, command.Entity())
	if storage == nil {
		k.logger.Error("system command component is missing on extract", zap.Stringer("command", command))
		k.abortCommand(w, setup, cleanup)
		return
	}
	callback := storage.take()
	if callback == nil {
		if depth == 0 {
			k.logger.Warn("system command missing", zap.Stringer("command", command))
			k.abortCommand(w, setup, cleanup)
		} else {
			k.logger.Debug("deferring suspected recursive system command", zap.Stringer("command", command))
			k.stats.Deferred++
			k.buffered.push(bufferedSyscommand{command: command, setup: setup, cleanup: cleanup})
		}
		return
	}

	k.depth++
	k.stats.SystemCommands++
	saved := k.syscommands.remove()

	setup.run(w)
	k.running = append(k.running, command)
	callback.Run(w, cleanup)
	k.running = k.running[:len(k.running)-1]
	k.garbageCollect(w)

	if storage := ecs.ReadComponent[SystemCommandStorage](w, command.Entity()); storage != nil {
		storage.insert(callback)
	} else {
		callback.Drop()
		if w.Alive(command.Entity()) {
			k.logger.Error("system command component is missing on insert", zap.Stringer("command", command))
			w.Despawn(command.Entity())
		}
		k.garbageCollect(w)
	}
	k.scheduleRemovalsAndDespawns(w)

	for {
		next, ok := k.syscommands.popFront()
		if !ok {
			break
		}
		k.runSystemCommand(w, next, nil, nil)
	}

	k.runReordered(w, command)

	rest := k.syscommands.remove()
	k.syscommands.append(saved)
	k.syscommands.append(rest)

	if depth == 0 {
		for {
			discard, ok := k.buffered.popFront()
			if !ok {
				break
			}
			k.logger.Warn("failed to run missing system command", zap.Stringer("command", discard.command))
			k.abortCommand(w, discard.setup, discard.cleanup)
		}
		k.depth = 0
	}
}

// runReordered runs buffered invocations of command, now that its callback
// is back in storage. Other buffered commands stay queued.
func (k *Kernel) runReordered(w *ecs.World, command SystemCommand) {
	if k.buffered.len() == 0 {
		return
	}
	pending := k.buffered.remove()
	var remaining []bufferedSyscommand
	for {
		buffered, ok := pending.popFront()
		if !ok {
			break
		}
		if buffered.command != command {
			remaining = append(remaining, buffered)
			continue
		}
		k.logger.Debug("running reordered recursive system command", zap.Stringer("command", command))
		k.runSystemCommand(w, buffered.command, buffered.setup, buffered.cleanup)
	}
	for _, buffered := range remaining {
		pending.push(buffered)
	}
	k.buffered.append(pending)
}

// currentReactor returns the command whose callback is running
func (k *Kernel) currentReactor() (SystemCommand, bool) {
	if len(k.running) == 0 {
		return 0, false
	}
	return k.running[len(k.running)-1], true
}
