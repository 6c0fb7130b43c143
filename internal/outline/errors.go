package outline

import "fmt"

// MalformedDocumentError reports an outline whose node ranges or levels are
// inconsistent. It is fatal to the single command that hit it and must not
// corrupt any registry or view state.
type MalformedDocumentError struct {
	DocID  string
	Reason string
}

func (e MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document %s: %s", e.DocID, e.Reason)
}
