// Package reporter renders completed result documents.
//
// Reporters only ever see the finished document. They never observe a run in progress,
// so every reporter of a run renders exactly the same data.
package reporter

import (
	"github.com/shivanshkc/statbench/pkg/result"
)

// Reporter consumes a completed result document.
type Reporter interface {
	// Name identifies the reporter in logs and errors.
	Name() string
	// Report renders doc.
	Report(doc *result.Document) error
}

// DataFile writes the whole document to a file.
type DataFile struct {
	path   string
	format result.Format
}

// NewDataFile returns a reporter that writes the document to path in the given format.
func NewDataFile(path string, format result.Format) *DataFile {
	return &DataFile{path: path, format: format}
}

// Name implements Reporter.
func (d *DataFile) Name() string {
	return d.format.String() + " data file " + d.path
}

// Report implements Reporter.
func (d *DataFile) Report(doc *result.Document) error {
	return result.WriteFile(d.path, doc, d.format)
}
