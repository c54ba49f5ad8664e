package nn

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// StateDicter is implemented by modules that can export and restore
// their parameters as a named tensor map.
type StateDicter interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(map[string]*tensor.RawTensor) error
}

// Checkpoint file layout (little-endian):
//
//	magic   uint32  0x47464C57 ("GFLW")
//	version uint32
//	count   uint32  number of entries
//	entries:
//	  nameLen uint32, name bytes
//	  dtype   uint32 (tensor.DataType)
//	  ndim    uint32, dims []uint32
//	  data    raw element bytes
const (
	checkpointMagic   = 0x47464C57
	checkpointVersion = 1
)

// SaveStateDict writes a state dictionary to w. Entries are written in
// sorted key order so identical dictionaries produce identical bytes.
func SaveStateDict(w io.Writer, stateDict map[string]*tensor.RawTensor) error {
	keys := make([]string, 0, len(stateDict))
	for k := range stateDict {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	header := []uint32{checkpointMagic, checkpointVersion, uint32(len(keys))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write checkpoint header: %w", err)
	}

	for _, name := range keys {
		t := stateDict[name]
		if err := binary.Write(w, binary.LittleEndian, uint32(len(name))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, name); err != nil {
			return err
		}

		shape := t.Shape()
		meta := make([]uint32, 0, 2+len(shape))
		meta = append(meta, uint32(t.DType()), uint32(len(shape)))
		for _, d := range shape {
			meta = append(meta, uint32(d))
		}
		if err := binary.Write(w, binary.LittleEndian, meta); err != nil {
			return err
		}

		if _, err := w.Write(t.Bytes()); err != nil {
			return fmt.Errorf("write tensor %q: %w", name, err)
		}
	}
	return nil
}

// LoadStateDict reads a state dictionary from r.
func LoadStateDict(r io.Reader) (map[string]*tensor.RawTensor, error) {
	var header [3]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read checkpoint header: %w", err)
	}
	if header[0] != checkpointMagic {
		return nil, fmt.Errorf("bad checkpoint magic 0x%08X", header[0])
	}
	if header[1] != checkpointVersion {
		return nil, fmt.Errorf("unsupported checkpoint version %d", header[1])
	}

	stateDict := make(map[string]*tensor.RawTensor, header[2])
	for i := uint32(0); i < header[2]; i++ {
		var nameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, err
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return nil, err
		}
		name := string(nameBytes)

		var dtype, ndim uint32
		if err := binary.Read(r, binary.LittleEndian, &dtype); err != nil {
			return nil, err
		}
		if dtype > uint32(tensor.Int32) {
			return nil, fmt.Errorf("tensor %q: unknown dtype %d", name, dtype)
		}
		if err := binary.Read(r, binary.LittleEndian, &ndim); err != nil {
			return nil, err
		}
		shape := make(tensor.Shape, ndim)
		for d := range shape {
			var dim uint32
			if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
				return nil, err
			}
			shape[d] = int(dim)
		}

		t, err := tensor.NewRaw(shape, tensor.DataType(dtype))
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", name, err)
		}
		if _, err := io.ReadFull(r, t.Bytes()); err != nil {
			return nil, fmt.Errorf("read tensor %q: %w", name, err)
		}
		stateDict[name] = t
	}
	return stateDict, nil
}

// SaveCheckpoint writes a module's parameters to path.
func SaveCheckpoint(path string, m StateDicter) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	defer f.Close()

	if err := SaveStateDict(f, m.StateDict()); err != nil {
		return err
	}
	return f.Close()
}

// LoadCheckpoint restores a module's parameters from path.
func LoadCheckpoint(path string, m StateDicter) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()

	stateDict, err := LoadStateDict(f)
	if err != nil {
		return err
	}
	return m.LoadStateDict(stateDict)
}
