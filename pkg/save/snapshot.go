package save

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"harvest/pkg/world"
)

const (
	stateFile = "world_state.json"
	metaFile  = "meta.json"
)

// Meta describes a snapshot without decoding the full world state.
type Meta struct {
	SavedAt time.Time `json:"saved_at"`
	Seed    int64     `json:"seed"`
}

// Encode serialises a world snapshot and its metadata into an in-memory
// ZIP archive and returns the raw bytes.
func Encode(state world.State, meta Meta) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	if err := writeJSON(zw, stateFile, state); err != nil {
		return nil, err
	}
	if err := writeJSON(zw, metaFile, meta); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close snapshot archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a snapshot archive back into a world state and metadata.
func Decode(data []byte) (world.State, Meta, error) {
	var state world.State
	var meta Meta

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return state, meta, fmt.Errorf("open snapshot archive: %w", err)
	}

	foundState := false
	for _, f := range zr.File {
		switch f.Name {
		case stateFile:
			if err := readJSON(f, &state); err != nil {
				return state, meta, err
			}
			foundState = true
		case metaFile:
			if err := readJSON(f, &meta); err != nil {
				return state, meta, err
			}
		}
	}

	if !foundState {
		return state, meta, fmt.Errorf("snapshot archive is missing %s", stateFile)
	}
	return state, meta, nil
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if _, err := w.Write(encoded); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func readJSON(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.Name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", f.Name, err)
	}
	return nil
}
