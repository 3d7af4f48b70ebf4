package dom

// PatchOp is the type of DOM mutation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // Update text content
	PatchSetAttr     PatchOp = 0x02 // Set/update attribute
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute
	PatchAddClass    PatchOp = 0x04 // Add one class token
	PatchRemoveClass PatchOp = 0x05 // Remove one class token
	PatchSetStyle    PatchOp = 0x06 // Set one style property
	PatchRemoveStyle PatchOp = 0x07 // Remove one style property
	PatchInsertNode  PatchOp = 0x08 // Insert serialized node
	PatchRemoveNode  PatchOp = 0x09 // Detach node
	PatchMoveNode    PatchOp = 0x0A // Move node before a sibling
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchAddClass:
		return "AddClass"
	case PatchRemoveClass:
		return "RemoveClass"
	case PatchSetStyle:
		return "SetStyle"
	case PatchRemoveStyle:
		return "RemoveStyle"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchMoveNode:
		return "MoveNode"
	default:
		return "Unknown"
	}
}

// Patch is one observed DOM mutation.
type Patch struct {
	Op     PatchOp
	Node   uint64 // target node ID
	Parent uint64 // parent ID for inserts and moves
	Before uint64 // ID of the following sibling; 0 means append
	Key    string // attribute key, class token, or style property
	Value  string // attribute/style value, text content, or serialized HTML for inserts
}

// Recorder observes mutations as they are applied to the tree.
type Recorder interface {
	Record(p Patch)
}
