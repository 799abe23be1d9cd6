package grid

// The grid holds no authoritative data. Every change it wants is reported to
// its owner as one of these messages.

// SelectionChangedMsg carries the desired selection.
type SelectionChangedMsg struct {
	IDs []string
}

// EditRequestedMsg asks the owner to edit one cell.
type EditRequestedMsg struct {
	Table  string
	RowID  string
	Column string
	Value  any
}

// PreviewRequestedMsg asks for a document preview. For reference columns
// Table is the referenced table.
type PreviewRequestedMsg struct {
	Table      string
	DocumentID string
}

// CopyRequestedMsg asks the owner to place Text on the clipboard.
type CopyRequestedMsg struct {
	Label string
	Text  string
}

// DeleteRequestedMsg asks the owner to delete documents.
type DeleteRequestedMsg struct {
	Table string
	IDs   []string
}

// LoadMoreMsg asks for the next page of Table.
type LoadMoreMsg struct {
	Table string
}

// AddDocumentRequestedMsg is sent from the empty state call to action.
type AddDocumentRequestedMsg struct {
	Table string
}
