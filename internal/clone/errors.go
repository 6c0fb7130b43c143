package clone

import "fmt"

// ResourceCollisionError reports that a view identity key is occupied by
// something not recognized as a managed clone. The requested navigation
// aborts and the occupying resource is left alone.
type ResourceCollisionError struct {
	Key string
}

func (e ResourceCollisionError) Error() string {
	return fmt.Sprintf("view slot %q is occupied by an unmanaged resource", e.Key)
}

// InvalidViewError reports an operation on a view whose backing document is
// gone (the view was destroyed or never attached).
type InvalidViewError struct {
	Key string
}

func (e InvalidViewError) Error() string {
	return fmt.Sprintf("view %q has no backing document", e.Key)
}

// EmptyScopeError reports a node-scoped operation invoked with no heading at
// point. The command is rejected with no state change.
type EmptyScopeError struct {
	Op string
}

func (e EmptyScopeError) Error() string {
	return fmt.Sprintf("%s: no heading at point", e.Op)
}
