package io

import (
	"bufio"
	"encoding/binary"
	"fmt"
	go_io "io"

	billy "github.com/go-git/go-billy/v5"

	"github.com/galquench/galquench/catalog"
)

/*
The GQB container stores named numeric datasets, optionally nested inside
named groups (one Snapshot_{n} group per snapshot). Everything is
little-endian:
    |-- 1 --||-- ... 2 ... --|

    1 - (int32) Magic number 0x47514231, "GQB1".
    2 - One level block. A level block is an (int32) entry count followed
        by that many entries. An entry is an (int8) kind flag, an (int32)
        name length and the name bytes, then either
          kind 0 (dataset): (int64) rows, (int32) width and rows*width
                            float64 values in row-major order, or
          kind 1 (group):   a nested level block.
*/
const gqbMagic = int32(0x47514231)

const (
	gqbDataset = int8(0)
	gqbGroup   = int8(1)
)

// OpenGQB reads a whole GQB container into memory and returns it as a
// Source. Catalogs are sized to one snapshot, so eager loading is fine.
func OpenGQB(fs billy.Filesystem, path string) (Source, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rd := bufio.NewReader(f)

	var magic int32
	if err := binary.Read(rd, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("`%s` is not a GQB file: %s", path, err.Error())
	}
	if magic != gqbMagic {
		return nil, fmt.Errorf(
			"`%s` is not a GQB file: bad magic number %#x", path, magic,
		)
	}

	src := NewMapSource(path)
	if err := readLevel(rd, src, path); err != nil {
		return nil, err
	}
	return src, nil
}

func readLevel(rd go_io.Reader, out *MapSource, path string) error {
	var n int32
	if err := binary.Read(rd, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("corrupted GQB file `%s`: %s", path, err.Error())
	}
	if n < 0 {
		return fmt.Errorf("corrupted GQB file `%s`: %d entries", path, n)
	}

	for i := int32(0); i < n; i++ {
		var kind int8
		if err := binary.Read(rd, binary.LittleEndian, &kind); err != nil {
			return fmt.Errorf("corrupted GQB file `%s`: %s", path, err.Error())
		}
		name, err := readString(rd)
		if err != nil {
			return fmt.Errorf("corrupted GQB file `%s`: %s", path, err.Error())
		}

		switch kind {
		case gqbDataset:
			var rows int64
			var width int32
			if err := binary.Read(rd, binary.LittleEndian, &rows); err != nil {
				return fmt.Errorf(
					"corrupted GQB file `%s`: %s", path, err.Error(),
				)
			}
			if err := binary.Read(rd, binary.LittleEndian, &width); err != nil {
				return fmt.Errorf(
					"corrupted GQB file `%s`: %s", path, err.Error(),
				)
			}
			if rows < 0 || width < 1 {
				return fmt.Errorf(
					"corrupted GQB file `%s`: dataset `%s` has %d rows of "+
						"width %d", path, name, rows, width,
				)
			}
			data := make([]float64, rows*int64(width))
			if err := binary.Read(rd, binary.LittleEndian, data); err != nil {
				return fmt.Errorf(
					"corrupted GQB file `%s`: %s", path, err.Error(),
				)
			}
			col, err := catalog.NewMatrixColumn(data, int(width))
			if err != nil {
				return err
			}
			out.AddDataset(name, col)
		case gqbGroup:
			if err := readLevel(rd, out.AddGroup(name), path); err != nil {
				return err
			}
		default:
			return fmt.Errorf(
				"corrupted GQB file `%s`: unknown entry kind %d", path, kind,
			)
		}
	}
	return nil
}

func readString(rd go_io.Reader) (string, error) {
	var n int32
	if err := binary.Read(rd, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n < 0 || n > 1<<16 {
		return "", fmt.Errorf("name of length %d", n)
	}
	buf := make([]byte, n)
	if _, err := go_io.ReadFull(rd, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteGQB writes the source tree to path as a GQB container, replacing
// any existing file.
func WriteGQB(fs billy.Filesystem, path string, src Source) error {
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if err := binary.Write(w, binary.LittleEndian, gqbMagic); err != nil {
		return err
	}
	if err := writeLevel(w, src); err != nil {
		return err
	}
	return w.Flush()
}

func writeLevel(w go_io.Writer, src Source) error {
	keys, err := src.Keys()
	if err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(keys))); err != nil {
		return err
	}

	for _, key := range keys {
		isGroup, err := src.IsGroup(key)
		if err != nil {
			return err
		}

		kind := gqbDataset
		if isGroup {
			kind = gqbGroup
		}
		if err := binary.Write(w, binary.LittleEndian, kind); err != nil {
			return err
		}
		if err := writeString(w, key); err != nil {
			return err
		}

		if isGroup {
			g, err := src.Group(key)
			if err != nil {
				return err
			}
			if err := writeLevel(w, g); err != nil {
				return err
			}
			continue
		}

		col, err := src.Dataset(key)
		if err != nil {
			return err
		}
		if err := binary.Write(
			w, binary.LittleEndian, int64(col.Len()),
		); err != nil {
			return err
		}
		if err := binary.Write(
			w, binary.LittleEndian, int32(col.Width()),
		); err != nil {
			return err
		}
		if err := binary.Write(
			w, binary.LittleEndian, col.RowMajor(),
		); err != nil {
			return err
		}
	}
	return nil
}

func writeString(w go_io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}
