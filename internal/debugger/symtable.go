package debugger

import (
	"encoding/gob"
	"io"
)

// LoadSymTable decodes a gob-encoded SymTable from r, following
// lassandro/golc3's cmd/golc3/main.go use of gob.NewDecoder(file).Decode
// for its sibling .lc3db symbol file. The VM core never produces this file
// itself (there is no assembler in scope); it is an optional, externally
// supplied side-car.
func LoadSymTable(r io.Reader) (SymTable, error) {
	var sym SymTable
	if err := gob.NewDecoder(r).Decode(&sym); err != nil {
		return nil, err
	}
	return sym, nil
}
