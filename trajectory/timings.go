package trajectory

import (
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// DefaultGripTimingsFile is the grip table file name looked up under a
// dataset root.
const DefaultGripTimingsFile = "human_grip_timings.json"

// GripTimings maps trajectory names to a recorded grip time. Names keep the
// order they had in the source file so that index construction over the
// table is reproducible.
type GripTimings struct {
	names  []string
	values map[string]float64
}

// NewGripTimings builds a table from parallel name/value slices.
func NewGripTimings(names []string, values []float64) (*GripTimings, error) {
	if len(names) != len(values) {
		return nil, errors.Errorf("grip timings: %d names but %d values", len(names), len(values))
	}
	g := &GripTimings{values: make(map[string]float64, len(names))}
	for i, name := range names {
		g.set(name, values[i])
	}
	return g, nil
}

func (g *GripTimings) set(name string, v float64) {
	if _, ok := g.values[name]; !ok {
		g.names = append(g.names, name)
	}
	g.values[name] = v
}

// Len returns the number of entries.
func (g *GripTimings) Len() int { return len(g.names) }

// Names returns the trajectory names in file order.
func (g *GripTimings) Names() []string {
	return append([]string(nil), g.names...)
}

// Lookup returns the recorded grip time for name.
func (g *GripTimings) Lookup(name string) (float64, bool) {
	v, ok := g.values[name]
	return v, ok
}

// LoadGripTimings reads a JSON object mapping trajectory name to grip time.
func LoadGripTimings(path string) (*GripTimings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening grip timings %s", path)
	}
	defer f.Close()

	g, err := ReadGripTimings(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading grip timings %s", path)
	}
	return g, nil
}

// ReadGripTimings decodes a grip table from r, keeping key order.
func ReadGripTimings(r io.Reader) (*GripTimings, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.Errorf("expected a JSON object, got %v", tok)
	}

	g := &GripTimings{values: make(map[string]float64)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, errors.Errorf("expected an object key, got %v", tok)
		}
		var v float64
		if err := dec.Decode(&v); err != nil {
			return nil, errors.Wrapf(err, "value for %q", name)
		}
		g.set(name, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return g, nil
}

// WriteGripTimings writes g as a JSON object in table order.
func WriteGripTimings(path string, g *GripTimings) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "closing %s", path)
		}
	}()

	if _, err := io.WriteString(f, "{"); err != nil {
		return err
	}
	for i, name := range g.names {
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		val, err := json.Marshal(g.values[name])
		if err != nil {
			return err
		}
		sep := ", "
		if i == 0 {
			sep = ""
		}
		if _, err := io.WriteString(f, sep+string(key)+": "+string(val)); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	if _, err := io.WriteString(f, "}\n"); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
