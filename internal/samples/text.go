package samples

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadText reads whitespace separated values.
func ReadText[T any](filename string) ([]T, error) {

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data []T
	for {
		var element T
		_, err := fmt.Fscan(file, &element)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		data = append(data, element)
	}

	return data, nil
}

// WriteText writes f(element) for each element, one per line.
func WriteText[V, T any](filename string, data []T, f func(T) V) error {

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	for _, element := range data {
		_, err := fmt.Fprintln(file, f(element))
		if err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
	}

	return file.Close()
}
