package nav

import "fmt"

// InvalidDepthError rejects a jump whose depth is not one of the four known
// expansion depths. Unknown depths never silently fall back to a default.
type InvalidDepthError struct {
	Depth string
}

func (e InvalidDepthError) Error() string {
	return fmt.Sprintf("invalid jump depth %q (want none, children, branches or entries)", e.Depth)
}
