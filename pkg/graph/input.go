package graph

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stageflow/pkg/errors"
)

// Format identifies a stage file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported stage file extension: %q", filepath.Ext(path))
	}
}

// ReadInputFile reads stage records from a JSON or TOML file.
func ReadInputFile(path string) (Input, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Input{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Input{}, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadInput(f, format)
}

// ReadInput decodes stage records from r.
func ReadInput(r io.Reader, format Format) (Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read stages")
	}
	switch format {
	case FormatJSON:
		return UnmarshalInput(data)
	case FormatTOML:
		var in Input
		if _, err := toml.Decode(string(data), &in); err != nil {
			return Input{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
		return in, validateInput(in)
	default:
		return Input{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported stage format: %q", format)
	}
}

// UnmarshalInput decodes JSON stage records. Both a bare array of records
// and an object with "stages" and "current" keys are accepted.
func UnmarshalInput(data []byte) (Input, error) {
	var in Input
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &in.Stages); err != nil {
			return Input{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode stages")
		}
	} else if err := json.Unmarshal(trimmed, &in); err != nil {
		return Input{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode stages")
	}
	return in, validateInput(in)
}

// validateInput checks the current stage name. Stage labels are display
// text and pass through unchecked.
func validateInput(in Input) error {
	if err := errors.ValidateStageName(in.Current); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "current stage: %s", errors.UserMessage(err))
	}
	return nil
}
