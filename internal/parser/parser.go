// Package parser loads case files into models.Suite values.
//
// A case file is a JSON array of case objects. Every required field is
// checked at load time so that a malformed file fails before any command
// runs, with an error naming the case index and the missing field.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harrison/caserun/internal/models"
)

// RequiredFields lists the keys every case object must carry, in report order.
var RequiredFields = []string{"case_name", "command", "args", "answer", "isfile", "score"}

// ErrMissingField is wrapped by configuration errors for absent case fields.
var ErrMissingField = errors.New("missing required field")

// ErrNotArray is wrapped by configuration errors for files whose top level is not a JSON array.
var ErrNotArray = errors.New("case file must be a JSON array")

// ParseFile reads and validates the case file at path.
func ParseFile(path string) (*models.Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.NewConfigError(path, fmt.Errorf("failed to open case file: %w", err))
	}
	defer f.Close()

	suite, err := Parse(f)
	if err != nil {
		var cfgErr *models.ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
			return nil, cfgErr
		}
		return nil, models.NewConfigError(path, err)
	}
	suite.Path = path
	return suite, nil
}

// Parse decodes a case list from r. The returned Suite has no Path.
func Parse(r io.Reader) (*models.Suite, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, models.NewConfigError("", fmt.Errorf("failed to read case file: %w", err))
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, models.NewConfigError("", ErrNotArray)
	}

	var objects []map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &objects); err != nil {
		return nil, models.NewConfigError("", fmt.Errorf("malformed case file: %w", err))
	}

	suite := &models.Suite{Cases: make([]models.Case, 0, len(objects))}
	for i, obj := range objects {
		c, err := decodeCase(i, obj)
		if err != nil {
			return nil, err
		}
		suite.Cases = append(suite.Cases, c)
	}

	return suite, nil
}

// decodeCase checks one case object for required fields and decodes it.
func decodeCase(index int, obj map[string]json.RawMessage) (models.Case, error) {
	if obj == nil {
		return models.Case{}, &models.ConfigError{Index: index, Err: fmt.Errorf("case must be a JSON object")}
	}

	for _, field := range RequiredFields {
		raw, ok := obj[field]
		if !ok || strings.TrimSpace(string(raw)) == "null" {
			return models.Case{}, &models.ConfigError{Index: index, Field: field, Err: ErrMissingField}
		}
	}

	var c models.Case
	targets := []struct {
		field string
		dst   interface{}
	}{
		{"case_name", &c.Name},
		{"command", &c.Command},
		{"args", &c.Args},
		{"answer", &c.Answer},
		{"isfile", &c.IsFile},
		{"score", &c.Score},
		{"mode", &c.Mode},
		{"timeout", &c.Timeout},
	}
	for _, t := range targets {
		raw, ok := obj[t.field]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, t.dst); err != nil {
			return models.Case{}, &models.ConfigError{Index: index, Field: t.field, Err: err}
		}
	}

	if c.Mode != "" && c.Mode != "exact" && c.Mode != "fuzzy" {
		return models.Case{}, &models.ConfigError{
			Index: index,
			Field: "mode",
			Err:   fmt.Errorf("unknown comparison mode %q (want exact or fuzzy)", c.Mode),
		}
	}
	if _, _, err := c.TimeoutDuration(); err != nil {
		return models.Case{}, &models.ConfigError{Index: index, Field: "timeout", Err: err}
	}

	return c, nil
}
