/*Package npy serializes record arrays as NumPy .npy files so the output
of a pipeline run drops straight into numpy.load. Files use format version
1.0 with a structured little-endian float64 dtype, one field per record
array field.*/
package npy

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	billy "github.com/go-git/go-billy/v5"

	"github.com/galquench/galquench/catalog"
)

/*
The layout, per the NumPy format specification:
    |-- 1 --||-- 2 --||-- 3 --||-- ... 4 ... --||-- ... 5 ... --|

    1 - The magic bytes "\x93NUMPY".
    2 - (uint8, uint8) Format version, 1.0.
    3 - (uint16) Length of the header text.
    4 - The header: a Python dict literal with the keys 'descr' (a list of
        (name, '<f8') tuples), 'fortran_order' (False) and 'shape' ((N,)),
        space-padded so the payload starts on a 64-byte boundary and
        terminated by a newline.
    5 - The records: N rows of one little-endian float64 per field.
*/
var magic = []byte("\x93NUMPY\x01\x00")

// Write serializes the record array to w.
func Write(w io.Writer, arr *catalog.RecordArray) error {
	names := arr.Names()
	if len(names) == 0 {
		return fmt.Errorf("the record array has no fields to write")
	}

	descr := make([]string, len(names))
	for i, name := range names {
		if strings.ContainsAny(name, "'\\") {
			return fmt.Errorf(
				"field name `%s` cannot be written to a .npy header", name,
			)
		}
		descr[i] = fmt.Sprintf("('%s', '<f8')", name)
	}
	header := fmt.Sprintf(
		"{'descr': [%s], 'fortran_order': False, 'shape': (%d,), }",
		strings.Join(descr, ", "), arr.Len(),
	)

	// Pad so the payload starts on a 64-byte boundary.
	unpadded := len(magic) + 2 + len(header) + 1
	pad := (64 - unpadded%64) % 64
	header += strings.Repeat(" ", pad) + "\n"
	if len(header) > 1<<16-1 {
		return fmt.Errorf("the .npy header does not fit in 2^16 bytes")
	}

	if _, err := w.Write(magic); err != nil {
		return err
	}
	if err := binary.Write(
		w, binary.LittleEndian, uint16(len(header)),
	); err != nil {
		return err
	}
	if _, err := w.Write([]byte(header)); err != nil {
		return err
	}

	fields := make([][]float64, len(names))
	for i, name := range names {
		fields[i], _ = arr.Field(name)
	}
	row := make([]float64, len(names))
	for i := 0; i < arr.Len(); i++ {
		for j := range fields {
			row[j] = fields[j][i]
		}
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return nil
}

// Read deserializes a structured .npy file written by Write. Only the
// subset of the format Write produces is understood: version 1.0, C order,
// 1-D shape, '<f8' fields.
func Read(r io.Reader) (*catalog.RecordArray, error) {
	buf := make([]byte, len(magic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("not a .npy file: %s", err.Error())
	}
	if string(buf) != string(magic) {
		return nil, fmt.Errorf("not a version 1.0 .npy file")
	}

	var headerLen uint16
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, err
	}
	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return nil, err
	}
	header := string(headerBuf)

	names, err := parseDescr(header)
	if err != nil {
		return nil, err
	}
	n, err := parseShape(header)
	if err != nil {
		return nil, err
	}
	if strings.Contains(header, "'fortran_order': True") {
		return nil, fmt.Errorf("Fortran-ordered .npy files are not supported")
	}

	fields := make([][]float64, len(names))
	for i := range fields {
		fields[i] = make([]float64, n)
	}
	row := make([]float64, len(names))
	for i := 0; i < n; i++ {
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("truncated .npy payload: %s", err.Error())
		}
		for j := range row {
			fields[j][i] = row[j]
		}
	}

	arr := catalog.NewRecordArray(n)
	for i, name := range names {
		if err := arr.SetField(name, fields[i]); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

// Save writes the record array to path, replacing any existing file.
func Save(fs billy.Filesystem, path string, arr *catalog.RecordArray) error {
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := Write(w, arr); err != nil {
		return err
	}
	return w.Flush()
}

// Load reads the record array stored at path.
func Load(fs billy.Filesystem, path string) (*catalog.RecordArray, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

// parseDescr pulls the field names out of the header's descr list. Every
// field must be a ('name', '<f8') pair.
func parseDescr(header string) ([]string, error) {
	start := strings.Index(header, "'descr': [")
	end := strings.Index(header, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf(".npy header carries no descr list")
	}
	descr := header[start+len("'descr': [") : end]

	var names []string
	for _, tuple := range strings.Split(descr, "), (") {
		tuple = strings.Trim(tuple, "() ")
		parts := strings.Split(tuple, ", ")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed descr entry `%s`", tuple)
		}
		name := strings.Trim(parts[0], "'")
		format := strings.Trim(parts[1], "'")
		if format != "<f8" {
			return nil, fmt.Errorf(
				"field `%s` has dtype `%s`, only '<f8' is supported",
				name, format,
			)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf(".npy header carries an empty descr list")
	}
	return names, nil
}

func parseShape(header string) (int, error) {
	start := strings.Index(header, "'shape': (")
	if start == -1 {
		return 0, fmt.Errorf(".npy header carries no shape")
	}
	rest := header[start+len("'shape': ("):]
	end := strings.Index(rest, ")")
	if end == -1 {
		return 0, fmt.Errorf(".npy header carries a malformed shape")
	}
	dims := strings.Split(strings.TrimSuffix(rest[:end], ","), ",")
	if len(dims) != 1 {
		return 0, fmt.Errorf("only 1-D .npy files are supported")
	}
	n, err := strconv.Atoi(strings.TrimSpace(dims[0]))
	if err != nil || n < 0 {
		return 0, fmt.Errorf(
			".npy header carries a malformed shape `%s`", rest[:end],
		)
	}
	return n, nil
}
