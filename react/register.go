package react

import (
	"go.uber.org/zap"

	"github.com/plus3/cobweb/ecs"
)

// With registers an existing system command as a reactor on the triggers.
// Cleanup and Revokable reactors are despawned once none of their triggers
// remain. The returned token is only meaningful for Revokable reactors.
func With(w *ecs.World, triggers TriggerBundle, command SystemCommand, mode ReactorMode) RevokeToken {
	k := KernelOf(w)
	if triggers == nil {
		triggers = Bundle{}
	}

	var handle ReactorHandle
	switch mode {
	case Persistent:
		handle = PersistentHandle(command)
	default:
		handle = AutoDespawnHandle(k.despawner.Prepare(command.Entity()))
	}

	types := k.registerTriggers(w, triggers, handle)
	handle.Release()

	k.logger.Debug("registered reactor",
		zap.Stringer("reactor", command),
		zap.Stringer("mode", mode),
		zap.Int("triggers", len(types)))
	return RevokeToken{ID: command, Types: types}
}

// On registers a revokable reactor
func On(w *ecs.World, triggers TriggerBundle, system ecs.System) RevokeToken {
	return With(w, triggers, SpawnSystemCommand(w, system), Revokable)
}

// OnPersistent registers a reactor that lives until it is despawned by hand
func OnPersistent(w *ecs.World, triggers TriggerBundle, system ecs.System) SystemCommand {
	command := SpawnSystemCommand(w, system)
	With(w, triggers, command, Persistent)
	return command
}

// OnCleanup registers a reactor that is despawned once its triggers are gone
func OnCleanup(w *ecs.World, triggers TriggerBundle, system ecs.System) SystemCommand {
	command := SpawnSystemCommand(w, system)
	With(w, triggers, command, Cleanup)
	return command
}

// Once registers a reactor that revokes itself the first time it runs
func Once(w *ecs.World, triggers TriggerBundle, system ecs.System) RevokeToken {
	k := KernelOf(w)
	inner := NewSystemCommandCallback(system)

	var token RevokeToken
	fired := false
	command := k.spawnCallback(w, &SystemCommandCallback{
		run: func(w *ecs.World, cleanup func(w *ecs.World)) {
			if fired {
				cleanup(w)
				return
			}
			fired = true
			Revoke(w, token)
			inner.Run(w, cleanup)
		},
		drop: inner.Drop,
	})
	token = With(w, triggers, command, Revokable)
	return token
}

// Revoke removes the reactor from every trigger recorded in the token.
// Entries that no longer exist are ignored.
func Revoke(w *ecs.World, token RevokeToken) {
	k := KernelOf(w)
	for _, rtype := range token.Types {
		k.cache.revoke(w, token.ID, rtype)
	}
}

// IsRegistered reports whether any trigger still refers to the reactor
func IsRegistered(w *ecs.World, command SystemCommand) bool {
	return KernelOf(w).cache.contains(w, command)
}
