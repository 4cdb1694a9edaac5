package blockkit

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"

	"github.com/reoring/blockkit/i18n"
)

// DuplicateKeys reports every object key that appears more than once in a
// JSON payload. Decoding keeps the last occurrence, so such payloads may
// validate while not meaning what their author wrote. maxErrors < 0 means
// unlimited.
func DuplicateKeys(data []byte, maxErrors int) (ValidationErrors, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	s := dupScanner{dec: dec, max: maxErrors}
	if err := s.value(Root(), ""); err != nil && !errors.Is(err, errDupLimit) {
		return nil, fmt.Errorf("blockkit: scan json: %w", err)
	}
	return s.errs, nil
}

var errDupLimit = errors.New("duplicate key limit reached")

type dupScanner struct {
	dec  *j.Decoder
	max  int
	errs ValidationErrors
}

// value consumes one JSON value rooted at at. attr is the top-level
// attribute owning it.
func (s *dupScanner) value(at PathRef, attr string) error {
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	delim, ok := tok.(j.Delim)
	if !ok {
		return nil
	}
	switch delim {
	case '{':
		seen := map[string]bool{}
		for s.dec.More() {
			kt, err := s.dec.Token()
			if err != nil {
				return err
			}
			key, _ := kt.(string)
			owner := attr
			if owner == "" {
				owner = key
			}
			field := at.Field(key)
			if seen[key] {
				s.errs = append(s.errs, field.Error(owner, CodeDuplicateKey, i18n.T(CodeDuplicateKey, nil)))
				if s.max >= 0 && len(s.errs) >= s.max {
					return errDupLimit
				}
			}
			seen[key] = true
			if err := s.value(field, owner); err != nil {
				return err
			}
		}
	case '[':
		for i := 0; s.dec.More(); i++ {
			if err := s.value(at.Index(i), attr); err != nil {
				return err
			}
		}
	}
	_, err = s.dec.Token()
	return err
}
