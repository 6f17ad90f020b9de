package lib

/* dump.go reads and writes compressed position dumps. A dump is a little
endian particle count, the byte length of a zstd block, and the block
itself, which decompresses to tightly packed [3]float64 positions. */

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/DataDog/zstd"
)

const posDumpFlag = uint32(0x70647031) // "pdp1"

// WritePositions compresses x and writes it to the file fname, replacing
// whatever was there before.
func WritePositions(fname string, x [][3]float64) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()
	return writePositions(f, x)
}

func writePositions(wr io.Writer, x [][3]float64) error {
	var b []byte
	if len(x) > 0 {
		b = unsafe.Slice((*byte)(unsafe.Pointer(&x[0])), len(x)*24)
	}

	buf, err := zstd.CompressLevel(nil, b, 1)
	if err != nil {
		return err
	}

	err = binary.Write(wr, binary.LittleEndian, posDumpFlag)
	if err != nil {
		return err
	}
	err = binary.Write(wr, binary.LittleEndian, int64(len(x)))
	if err != nil {
		return err
	}
	err = binary.Write(wr, binary.LittleEndian, int64(len(buf)))
	if err != nil {
		return err
	}
	_, err = wr.Write(buf)
	return err
}

// ReadPositions reads a dump written by WritePositions.
func ReadPositions(fname string) ([][3]float64, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readPositions(f)
}

func readPositions(rd io.Reader) ([][3]float64, error) {
	var flag uint32
	if err := binary.Read(rd, binary.LittleEndian, &flag); err != nil {
		return nil, err
	}
	if flag != posDumpFlag {
		return nil, fmt.Errorf(
			"The file does not start with the position dump flag, so it "+
				"is either corrupted or not a position dump. Expected "+
				"%x, got %x.", posDumpFlag, flag,
		)
	}

	var n, nBuf int64
	if err := binary.Read(rd, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if err := binary.Read(rd, binary.LittleEndian, &nBuf); err != nil {
		return nil, err
	}
	if n < 0 || nBuf < 0 {
		return nil, fmt.Errorf(
			"The position dump header claims %d particles in %d "+
				"compressed bytes.", n, nBuf,
		)
	}

	buf := make([]byte, nBuf)
	if _, err := io.ReadFull(rd, buf); err != nil {
		return nil, err
	}

	x := make([][3]float64, n)
	if n == 0 {
		return x, nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&x[0])), len(x)*24)
	out, err := zstd.Decompress(b, buf)
	if err != nil {
		return nil, err
	}
	if len(out) != len(b) {
		return nil, fmt.Errorf(
			"The position dump decompressed to %d bytes, but its header "+
				"claims %d particles, which need %d bytes.",
			len(out), n, len(b),
		)
	}
	return x, nil
}
