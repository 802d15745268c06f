// Package samples reads and writes raw sample dumps.
package samples

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// ReadBinary reads a little-endian dump of fixed-size values.
func ReadBinary[T any](filename string) ([]T, error) {

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return DecodeBinary[T](file)
}

// DecodeBinary reads values until EOF. A trailing partial value is an error.
func DecodeBinary[T any](r io.Reader) ([]T, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}

	var zero T
	size := binary.Size(zero)
	if size <= 0 {
		return nil, fmt.Errorf("unsupported sample type %T", zero)
	}
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("sample dump of %d bytes is not a multiple of %d", len(raw), size)
	}

	data := make([]T, len(raw)/size)
	if _, err := binary.Decode(raw, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("failed to decode samples: %w", err)
	}
	return data, nil
}

func WriteBinary[T any](filename string, data []T) error {

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := binary.Write(file, binary.LittleEndian, data); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return file.Close()
}
