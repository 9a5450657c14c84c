package predict

import (
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/fsoeltoni/vocal-remover/errors"
	tf "github.com/kiteco/tensorflow/tensorflow/go"
)

// Model wraps a Tensorflow graph (serialized as a GraphDef proto, frozen
// to replace variables with constants) and a session to run it in.
type Model struct {
	graph   *tf.Graph
	session *tf.Session
}

// NewModel loads a frozen Tensorflow model from the given path.
func NewModel(path string) (*Model, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading graph definition")
	}

	graph := tf.NewGraph()
	if err := graph.Import(data, ""); err != nil {
		graph.Delete()
		return nil, errors.Wrapf(err, "error importing graph")
	}

	session, err := tf.NewSession(graph, nil)
	if err != nil {
		graph.Delete()
		return nil, errors.Wrapf(err, "error creating session")
	}

	return &Model{graph: graph, session: session}, nil
}

// Run feeds the provided values, computes the requested fetches, and
// returns them keyed by fetch name.
func (m *Model) Run(feeds map[string]interface{}, fetches []string) (map[string]interface{}, error) {
	tfFeeds := make(map[tf.Output]*tf.Tensor)
	for name, val := range feeds {
		out, err := m.output(name)
		if err != nil {
			return nil, err
		}
		tVal, err := tf.NewTensor(val)
		if err != nil {
			return nil, errors.Errorf("error creating tensor for value of '%s': %v", name, err)
		}
		tfFeeds[out] = tVal
	}
	defer func() {
		for _, t := range tfFeeds {
			t.Delete()
		}
	}()

	var tfFetches []tf.Output
	for _, name := range fetches {
		out, err := m.output(name)
		if err != nil {
			return nil, err
		}
		tfFetches = append(tfFetches, out)
	}

	results, err := m.session.Run(tfFeeds, tfFetches, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "error running session")
	}

	out := make(map[string]interface{})
	for i, name := range fetches {
		out[name] = results[i].Value()
	}
	return out, nil
}

// Unload releases the session and graph.
func (m *Model) Unload() {
	if m.session != nil {
		m.session.Close()
	}
	if m.graph != nil {
		m.graph.Delete()
	}
	m.session = nil
	m.graph = nil
}

// output resolves "name" or "name:idx" to a graph output.
func (m *Model) output(name string) (tf.Output, error) {
	idx := 0
	if parts := strings.Split(name, ":"); len(parts) == 2 {
		name = parts[0]
		var err error
		idx, err = strconv.Atoi(parts[1])
		if err != nil {
			return tf.Output{}, errors.Errorf("invalid output index in '%s'", name)
		}
	}
	op := m.graph.Operation(name)
	if op == nil {
		return tf.Output{}, errors.Errorf("unable to find operation '%s'", name)
	}
	return op.Output(idx), nil
}
