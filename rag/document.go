package rag

// Document is raw text plus a filename and a generated unique identifier.
// Documents are immutable once ingested; only their segments persist in
// the index.
type Document struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Segment is a contiguous slice of a document's text prepared for
// embedding.
//
// Invariant: for the segments of one document in Position order,
// Text[0] + Text[1][Overlap[1]:] + ... reconstructs the document content
// exactly. Overlap is the number of leading runes shared with the
// previous segment (0 for the first).
type Segment struct {
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
	Position   int    `json:"position"`
	Text       string `json:"text"`
	Overlap    int    `json:"overlap"`
	Length     int    `json:"length"`
}
