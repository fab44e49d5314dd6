package model

type IngestError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type IngestResult struct {
	Inserted int           `json:"indexed"`
	Errors   []IngestError `json:"errors"`
}
