package generate

import (
	"bytes"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled caches schemas by name and body; the schema vars are package
// level so each compiles once per process.
var compiled sync.Map

func compileSchema(name string, raw []byte) (*jsonschema.Schema, error) {
	key := name + "\x00" + string(raw)
	if s, ok := compiled.Load(key); ok {
		return s.(*jsonschema.Schema), nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, eris.Wrapf(err, "generate: parse schema %s", name)
	}
	loc := "mem://brandscope/" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(loc, doc); err != nil {
		return nil, eris.Wrapf(err, "generate: add schema %s", name)
	}
	s, err := c.Compile(loc)
	if err != nil {
		return nil, eris.Wrapf(err, "generate: compile schema %s", name)
	}
	compiled.Store(key, s)
	return s, nil
}

// validateJSON checks text against the schema body. An empty body skips
// the check.
func validateJSON(name string, raw []byte, text string) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	s, err := compileSchema(name, raw)
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
	if err != nil {
		return eris.Wrap(err, "decode response")
	}
	if err := s.Validate(inst); err != nil {
		return eris.Wrap(err, "schema validation")
	}
	return nil
}
