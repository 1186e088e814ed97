package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

var errInvalidInput = errors.New("invalid input")

// dimension returns flagValue if it was set, otherwise prompts for it on out
// and reads the next whitespace-separated integer from in.
func dimension(in *bufio.Reader, out io.Writer, name string, flagValue int) (int, error) {
	if flagValue > 0 {
		return flagValue, nil
	}
	if flagValue < 0 {
		return 0, fmt.Errorf("%w: --%s must be positive, got %d", errInvalidOption, name, flagValue)
	}

	_, err := fmt.Fprintf(out, "Please enter the output image %s: > ", name)
	if err != nil {
		return 0, err
	}

	var n int
	_, err = fmt.Fscan(in, &n)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		// Input ended before a number was given.
		return 0, fmt.Errorf("reading %s: %w", name, io.EOF)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number: %w", errInvalidInput, name, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %d", errInvalidInput, name, n)
	}

	return n, nil
}
