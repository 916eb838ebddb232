package result

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/ugorji/go/codec"
)

var (
	// ErrSerialization is returned when a document cannot be encoded or decoded.
	ErrSerialization = errors.New("serialization failed")
	// ErrUnsupportedVersion is returned when decoding a document of another schema version.
	ErrUnsupportedVersion = errors.New("unsupported schema version")
)

// Format is a serialization format of the result document.
type Format int

const (
	FormatJSON Format = iota
	FormatMsgpack
	FormatCompressedMsgpack
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	case FormatCompressedMsgpack:
		return "compressed-msgpack"
	default:
		return "unknown"
	}
}

// msgpackHandle writes maps in sorted key order so that equal documents encode to equal bytes.
var msgpackHandle = func() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.Canonical = true
	h.WriteExt = true
	return h
}()

// Encode serializes doc in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	if doc == nil {
		return nil, errors.Wrap(ErrSerialization, "nil document")
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "encode json"), ErrSerialization)
		}
		return append(data, '\n'), nil

	case FormatMsgpack:
		return encodeMsgpack(doc)

	case FormatCompressedMsgpack:
		raw, err := encodeMsgpack(doc)
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "create gzip writer"), ErrSerialization)
		}
		if _, err := zw.Write(raw); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "compress msgpack"), ErrSerialization)
		}
		if err := zw.Close(); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "compress msgpack"), ErrSerialization)
		}
		return buf.Bytes(), nil
	}

	return nil, errors.Wrapf(ErrSerialization, "unknown format %d", int(format))
}

// Decode parses a document in the given format. Documents of other schema versions are
// rejected with ErrUnsupportedVersion.
func Decode(data []byte, format Format) (*Document, error) {
	switch format {
	case FormatJSON:
		var probe struct {
			Version int `json:"version"`
		}
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "decode json"), ErrSerialization)
		}
		if err := checkVersion(probe.Version); err != nil {
			return nil, err
		}

		doc := &Document{}
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "decode json"), ErrSerialization)
		}
		return doc, nil

	case FormatMsgpack:
		return decodeMsgpack(data)

	case FormatCompressedMsgpack:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "open gzip stream"), ErrSerialization)
		}
		defer func() { _ = zr.Close() }()

		raw, err := io.ReadAll(zr)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "decompress msgpack"), ErrSerialization)
		}
		return decodeMsgpack(raw)
	}

	return nil, errors.Wrapf(ErrSerialization, "unknown format %d", int(format))
}

// WriteFile encodes doc and writes it to path, creating parent directories.
func WriteFile(path string, doc *Document, format Format) error {
	data, err := Encode(doc, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// ReadFile reads and decodes the document at path.
func ReadFile(path string, format Format) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return Decode(data, format)
}

func encodeMsgpack(doc *Document) ([]byte, error) {
	var data []byte
	if err := codec.NewEncoderBytes(&data, msgpackHandle).Encode(doc); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "encode msgpack"), ErrSerialization)
	}
	return data, nil
}

func decodeMsgpack(data []byte) (*Document, error) {
	var probe struct {
		Version int `codec:"version"`
	}
	if err := codec.NewDecoderBytes(data, msgpackHandle).Decode(&probe); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode msgpack"), ErrSerialization)
	}
	if err := checkVersion(probe.Version); err != nil {
		return nil, err
	}

	doc := &Document{}
	if err := codec.NewDecoderBytes(data, msgpackHandle).Decode(doc); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode msgpack"), ErrSerialization)
	}
	return doc, nil
}

func checkVersion(version int) error {
	if version != SchemaVersion {
		return errors.Wrapf(ErrUnsupportedVersion, "got version %d, want %d", version, SchemaVersion)
	}
	return nil
}
