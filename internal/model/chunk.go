package model

// DocumentChunk is one persisted row of the document table.
type DocumentChunk struct {
	TenantID   string            `json:"pharma_id"`
	SourcePath string            `json:"source_path"`
	Content    string            `json:"content"`
	Embedding  []float64         `json:"-"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Source is a retrieved chunk as returned to callers.
type Source struct {
	SourcePath string `json:"source_path"`
	Content    string `json:"content"`
}
