// Package lines reads a response off the wire one line at a time.
package lines

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Channel streams the lines of f without their line endings. Carriage returns
// before the line feed are dropped, and a final line without a line feed is
// still sent. f is closed once it is drained.
//
// The error channel is closed after the line channel. It carries the read
// error that cut the stream short, if any; a clean EOF is not an error.
func Channel(f io.ReadCloser) (<-chan string, <-chan error) {
	lineChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		defer close(errChan)
		defer close(lineChan)
		defer f.Close()

		br := bufio.NewReader(f)
		for {
			line, err := br.ReadString('\n')
			if len(line) > 0 {
				line = strings.TrimSuffix(line, "\n")
				lineChan <- strings.TrimRight(line, "\r")
			}

			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errChan <- err
				return
			}
		}
	}()

	return lineChan, errChan
}
