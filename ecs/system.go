package ecs

import "reflect"

// System represents a behavior that operates on entities with specific components.
// User-defined systems should implement this interface and can include Query fields
// for accessing entities, as well as custom state fields that persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to the System interface
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}

// Initializer is implemented by system fields that need a world reference
// before the system first runs (queries, singletons, reaction readers).
type Initializer interface {
	Init(w *World)
}

var initializerType = reflect.TypeFor[Initializer]()

// InitSystem calls Init on every exported struct field of the system whose
// address implements Initializer. Systems that are not structs are left alone.
func InitSystem(w *World, system any) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() != reflect.Ptr || systemValue.IsNil() {
		return
	}
	systemValue = systemValue.Elem()

	if systemValue.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() != reflect.Struct {
			continue
		}

		if !field.Addr().Type().Implements(initializerType) {
			continue
		}

		field.Addr().Interface().(Initializer).Init(w)
	}
}

// queryRefresher is implemented by query fields rebuilt before each system run
type queryRefresher interface {
	Execute()
}

var queryRefresherType = reflect.TypeFor[queryRefresher]()

// collectQueries returns the query fields of a system struct
func collectQueries(system any) []queryRefresher {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() != reflect.Ptr || systemValue.IsNil() {
		return nil
	}
	systemValue = systemValue.Elem()

	if systemValue.Kind() != reflect.Struct {
		return nil
	}

	var queries []queryRefresher
	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}
		if field.Addr().Type().Implements(queryRefresherType) {
			queries = append(queries, field.Addr().Interface().(queryRefresher))
		}
	}
	return queries
}

// RefreshQueries rebuilds every query field of a system struct. Systems run
// outside a Scheduler call it before Execute.
func RefreshQueries(system any) {
	for _, query := range collectQueries(system) {
		query.Execute()
	}
}
