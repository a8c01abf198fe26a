package render

import "fmt"

// TransformFault reports that rendering hit non-finite transform data. The
// render loop catches it, revalidates the scene, and retries the frame
// once before dropping it.
type TransformFault struct {
	Node   string // offending node, empty if the camera was at fault
	Detail string
}

func (f *TransformFault) Error() string {
	if f.Node == "" {
		return fmt.Sprintf("transform fault: %s", f.Detail)
	}
	return fmt.Sprintf("transform fault at node %q: %s", f.Node, f.Detail)
}
