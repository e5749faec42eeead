package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is a catalog document as exchanged with vendors and the CLI.
//
//	frames:
//	  - key: oak-1
//	    name: Oak 1in flat
//	    price_per_foot: 2.25
//	    options:
//	      - {method: length, price_per_foot: 2.25}
//	      - {method: box, price_per_foot: 1.80, box_quantity: 96}
//	sheets:
//	  - key: white-core
//	    material: mat
//	    name: White core 4-ply
//	    entry: {box_price: 72, sheets_per_box: 10, sheet_width: 32, sheet_height: 40}
type File struct {
	Frames []Frame `json:"frames" yaml:"frames"`
	Sheets []Sheet `json:"sheets" yaml:"sheets"`
}

// ParseFile decodes a YAML catalog document. Unknown fields are rejected.
func ParseFile(r io.Reader) (File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("decode catalog file: %w", err)
	}
	return f, nil
}

// LoadFile reads a YAML catalog document from path.
func LoadFile(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open catalog file: %w", err)
	}
	defer fh.Close()

	return ParseFile(fh)
}
