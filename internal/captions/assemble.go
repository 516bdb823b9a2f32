package captions

import (
	"os"

	"wordglow/internal/fileutil"
)

// Result summarises a written document.
type Result struct {
	Path     string
	Cues     int
	Duration float64
	Document *Document
}

// Assemble encodes cues with style and writes a complete document to path.
// The file is replaced atomically, then read back and checked so that the
// style record and wrap style on disk are the ones requested.
func Assemble(path string, cues []Cue, style StyleSpec) (Result, error) {
	if err := style.Validate(); err != nil {
		return Result{}, err
	}
	if len(cues) == 0 {
		return Result{}, &EmptyInputError{}
	}

	doc := NewDocument(style, EncodeCues(cues, style))
	if err := fileutil.WriteFileAtomic(path, doc.Bytes(), 0o644); err != nil {
		return Result{}, &IOError{Op: "write", Path: path, Err: err}
	}

	written, err := os.ReadFile(path)
	if err != nil {
		return Result{}, &IOError{Op: "read back", Path: path, Err: err}
	}
	if err := Verify(string(written), style); err != nil {
		return Result{}, err
	}

	return Result{
		Path:     path,
		Cues:     len(doc.Events),
		Duration: cues[len(cues)-1].End(),
		Document: doc,
	}, nil
}

// Repair patches the document at path in place.
func Repair(path string, style StyleSpec) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &IOError{Op: "read", Path: path, Err: err}
	}
	patched, err := Patch(string(data), style)
	if err != nil {
		return err
	}
	if err := VerifyPatched(patched, style); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, []byte(patched), 0o644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
