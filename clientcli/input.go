package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	s3component "github.com/edgee-cloud/amazon-s3-component"
)

// StdinPath selects standard input in ReadEvent and ReadRequest.
const StdinPath = "-"

// ReadEvent decodes an event from path, or from stdin when path is "-".
func ReadEvent(path string, stdin io.Reader) (s3component.Event, error) {
	var event s3component.Event
	if err := readJSON(path, stdin, &event); err != nil {
		return s3component.Event{}, fmt.Errorf("read event: %w", err)
	}
	return event, nil
}

// ReadRequest decodes a request descriptor from path, or from stdin when
// path is "-".
func ReadRequest(path string, stdin io.Reader) (s3component.Request, error) {
	var req s3component.Request
	if err := readJSON(path, stdin, &req); err != nil {
		return s3component.Request{}, fmt.Errorf("read request: %w", err)
	}
	return req, nil
}

func readJSON(path string, stdin io.Reader, v any) error {
	var data []byte
	var err error
	if path == StdinPath {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided input file
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", s3component.ErrInvalidInput, err)
	}
	return nil
}
