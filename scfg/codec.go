package scfg

import (
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/cfgkit/restructure/errors"
)

// DecodeYAML reads a YAML graph definition and validates it.
func DecodeYAML(r io.Reader) (*Graph, error) {
	var def Def
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&def); err != nil {
		return nil, errors.New(errors.PhaseBuild, errors.KindMalformedGraph).
			Detail("decode yaml").Cause(err).Build()
	}
	return New(def)
}

// EncodeYAML writes the graph as a YAML definition.
func EncodeYAML(w io.Writer, g *Graph) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(g.Def())
}

// DecodeMsgpack reads a msgpack graph definition and validates it.
func DecodeMsgpack(r io.Reader) (*Graph, error) {
	var def Def
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&def); err != nil {
		return nil, errors.New(errors.PhaseBuild, errors.KindMalformedGraph).
			Detail("decode msgpack").Cause(err).Build()
	}
	return New(def)
}

// EncodeMsgpack writes the graph as a msgpack definition.
func EncodeMsgpack(w io.Writer, g *Graph) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(g.Def())
}

// LoadFile reads a graph from path, choosing the codec by extension:
// .yaml/.yml for YAML, anything else for msgpack.
func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return DecodeMsgpack(f)
	}
}

// SaveFile writes a graph to path, choosing the codec by extension as in
// LoadFile.
func SaveFile(path string, g *Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return EncodeYAML(f, g)
	default:
		return EncodeMsgpack(f, g)
	}
}
