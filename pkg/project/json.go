package project

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/errors"
	"github.com/matzehuels/meteomap/pkg/observability"
)

// rawRecord mirrors Record but keeps the fields that need shape checks raw.
type rawRecord struct {
	Record
	Version  *int            `json:"version"`
	Elements json.RawMessage `json:"elements"`
}

// Marshal encodes doc as an indented project record stamped with at.
func Marshal(doc document.Document, at time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(Serialize(doc, at), "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode project")
	}
	return data, nil
}

// Unmarshal decodes and validates a project record.
func Unmarshal(data []byte) (document.Document, error) {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return document.Document{}, errors.Wrap(errors.ErrCodeInvalidProject, err, "decode project")
	}
	if raw.Version == nil {
		return document.Document{}, errors.New(errors.ErrCodeInvalidProject, "missing version tag")
	}
	elems := bytes.TrimSpace(raw.Elements)
	if len(elems) == 0 || elems[0] != '[' {
		return document.Document{}, errors.New(errors.ErrCodeInvalidProject, "elements must be an array")
	}

	rec := raw.Record
	rec.Version = *raw.Version
	if err := json.Unmarshal(elems, &rec.Elements); err != nil {
		return document.Document{}, errors.Wrap(errors.ErrCodeInvalidProject, err, "decode elements")
	}
	return Deserialize(rec)
}

// Write encodes doc to w.
func Write(w io.Writer, doc document.Document, at time.Time) error {
	data, err := Marshal(doc, at)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write project")
	}
	return nil
}

// Read decodes a project from r. It does not close r. Every call is reported
// to the editor import hook.
func Read(r io.Reader) (document.Document, error) {
	doc, err := read(r)
	observability.Editor().OnImport(err)
	return doc, err
}

func read(r io.Reader) (document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return document.Document{}, errors.Wrap(errors.ErrCodeInvalidProject, err, "read project")
	}
	return Unmarshal(data)
}

// ExportFile writes doc to a project file at path.
func ExportFile(path string, doc document.Document, at time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()
	return Write(f, doc, at)
}

// ImportFile reads the project file at path.
func ImportFile(path string) (document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return document.Document{}, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return document.Document{}, errors.Wrap(errors.ErrCodeInvalidProject, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}
