// Package serialization reads and writes objects to files, picking the
// format from the file extension: .json or .gob, optionally suffixed with
// .gz for gzip compression.
package serialization

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/fsoeltoni/vocal-remover/errors"
)

// Encoder is an interface that matches gob.Encoder and json.Encoder
type Encoder interface {
	Encode(interface{}) error
}

// Decoder is an interface that matches gob.Decoder and json.Decoder
type Decoder interface {
	Decode(interface{}) error
}

// EncodeCloser is an encoder that can also close its underlying stream
type EncodeCloser struct {
	encoder Encoder
	closers []io.Closer
}

// Encode writes an object to the underlying stream
func (e *EncodeCloser) Encode(x interface{}) error {
	return e.encoder.Encode(x)
}

// Close closes the underlying stream
func (e *EncodeCloser) Close() error {
	var closeErr error
	// We must close in reverse order
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			closeErr = err
		}
	}
	return closeErr
}

// NewEncoder opens the path for writing and returns an encoder in the
// format specified by the file extension.
func NewEncoder(path string) (*EncodeCloser, error) {
	var w io.WriteCloser
	w, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	closers := []io.Closer{w}

	name := path
	if strings.HasSuffix(name, ".gz") {
		name = strings.TrimSuffix(name, ".gz")
		w = gzip.NewWriter(w)
		closers = append(closers, w)
	}

	var e Encoder
	switch {
	case strings.HasSuffix(name, ".json"):
		e = json.NewEncoder(w)
	case strings.HasSuffix(name, ".gob"):
		e = gob.NewEncoder(w)
	default:
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i].Close()
		}
		return nil, errors.Errorf("could not find encoder for %s", path)
	}

	return &EncodeCloser{encoder: e, closers: closers}, nil
}

// Encode writes the object to the path, using the format specified by the
// file extension.
func Encode(path string, obj interface{}) error {
	enc, err := NewEncoder(path)
	if err != nil {
		return err
	}
	err = enc.Encode(obj)
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	return err
}

// Decode reads a single object from the path, using the format specified
// by the file extension.
func Decode(path string, obj interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	name := path
	if strings.HasSuffix(name, ".gz") {
		name = strings.TrimSuffix(name, ".gz")
		gz, err := gzip.NewReader(r)
		if err != nil {
			return errors.Wrapf(err, "error opening gzip stream for %s", path)
		}
		defer gz.Close()
		r = gz
	}

	var d Decoder
	switch {
	case strings.HasSuffix(name, ".json"):
		d = json.NewDecoder(r)
	case strings.HasSuffix(name, ".gob"):
		d = gob.NewDecoder(r)
	default:
		return errors.Errorf("could not find decoder for %s", path)
	}

	if err := d.Decode(obj); err != nil {
		return errors.Wrapf(err, "error decoding %s", path)
	}
	return nil
}

// EncodeBytes serializes the object to a byte slice in the format implied
// by ext, which takes the same values as a file extension (".gob.gz", ...).
func EncodeBytes(ext string, obj interface{}) ([]byte, error) {
	var buf bytes.Buffer
	var w io.Writer = &buf
	var closers []io.Closer

	name := ext
	if strings.HasSuffix(name, ".gz") {
		name = strings.TrimSuffix(name, ".gz")
		gz := gzip.NewWriter(w)
		closers = append(closers, gz)
		w = gz
	}

	var e Encoder
	switch {
	case strings.HasSuffix(name, ".json"):
		e = json.NewEncoder(w)
	case strings.HasSuffix(name, ".gob"):
		e = gob.NewEncoder(w)
	default:
		return nil, errors.Errorf("could not find encoder for %s", ext)
	}

	if err := e.Encode(obj); err != nil {
		return nil, err
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeBytes deserializes the object from a byte slice in the format
// implied by ext.
func DecodeBytes(ext string, data []byte, obj interface{}) error {
	var r io.Reader = bytes.NewReader(data)

	name := ext
	if strings.HasSuffix(name, ".gz") {
		name = strings.TrimSuffix(name, ".gz")
		gz, err := gzip.NewReader(r)
		if err != nil {
			return err
		}
		defer gz.Close()
		r = gz
	}

	var d Decoder
	switch {
	case strings.HasSuffix(name, ".json"):
		d = json.NewDecoder(r)
	case strings.HasSuffix(name, ".gob"):
		d = gob.NewDecoder(r)
	default:
		return errors.Errorf("could not find decoder for %s", ext)
	}

	return d.Decode(obj)
}
