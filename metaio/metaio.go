// Package metaio persists metadata packages.
//
// Two encodings are supported: msgpack for shipping metadata next to a
// library binary, and YAML for metadata people read and edit. Both go
// through the same wire structs, so either round-trips a package losslessly.
// Type references are stored in their string form when that form parses
// back to the same shape, and as a tree of nodes otherwise. Every ID is
// recomputed on decode; a file whose IDs do not match its names is
// rejected with errors.KindInvalidData.
package metaio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/tangara/errors"
	"github.com/wippyai/tangara/meta"
)

// Format is a metadata encoding.
type Format uint8

const (
	Msgpack Format = iota
	YAML
)

func (f Format) String() string {
	switch f {
	case Msgpack:
		return "msgpack"
	case YAML:
		return "yaml"
	}
	return "unknown"
}

// FormatFor picks the format from a file extension: .tgm and .msgpack are
// msgpack, .yaml and .yml are YAML.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tgm", ".msgpack":
		return Msgpack, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, errors.New(errors.PhaseDecode, errors.KindUnsupported).
		Path(path).
		Detail("unknown metadata file extension").
		Build()
}

// Encode writes pkg to w.
func Encode(w io.Writer, pkg *meta.Package, f Format) error {
	wf := toWire(pkg)
	switch f {
	case Msgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(&wf); err != nil {
			return errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "encode msgpack metadata")
		}
		return nil
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&wf); err != nil {
			return errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "encode yaml metadata")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "encode yaml metadata")
		}
		return nil
	}
	return errors.Unsupported(errors.PhaseEncode, "format "+f.String())
}

// Decode reads a package from r.
func Decode(r io.Reader, f Format) (*meta.Package, error) {
	var wf wireFile
	switch f {
	case Msgpack:
		if err := msgpack.NewDecoder(r).Decode(&wf); err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "decode msgpack metadata")
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&wf); err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "decode yaml metadata")
		}
	default:
		return nil, errors.Unsupported(errors.PhaseDecode, "format "+f.String())
	}
	return fromWire(wf)
}

// EncodeMsgpack returns the msgpack encoding of pkg.
func EncodeMsgpack(pkg *meta.Package) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, pkg, Msgpack); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMsgpack decodes a package from msgpack.
func DecodeMsgpack(data []byte) (*meta.Package, error) {
	return Decode(bytes.NewReader(data), Msgpack)
}

// EncodeYAML returns the YAML encoding of pkg.
func EncodeYAML(pkg *meta.Package) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, pkg, YAML); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeYAML decodes a package from YAML.
func DecodeYAML(data []byte) (*meta.Package, error) {
	return Decode(bytes.NewReader(data), YAML)
}

// ReadFile decodes the package stored at path.
func ReadFile(path string) (*meta.Package, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindNotFound, err, "open metadata file")
	}
	defer file.Close()
	return Decode(file, f)
}

// WriteFile encodes pkg to path, replacing it.
func WriteFile(path string, pkg *meta.Package) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, pkg, f); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "write metadata file")
	}
	return nil
}
