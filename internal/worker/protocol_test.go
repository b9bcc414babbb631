package worker

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydidas/pydidas-go/internal/dataset"
)

func TestFrameWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	fw := newFrameWriter(&buf)
	require.NoError(t, fw.write(kindTask, taskPayload{Task: []byte{1, 2, 3}}))
	require.NoError(t, fw.write(kindStop, nil))

	fr := newFrameReader(&buf)
	env, err := fr.read()
	require.NoError(t, err)
	assert.Equal(t, kindTask, env.Kind)

	var tp taskPayload
	require.NoError(t, unmarshalEnvelope(env, &tp))
	assert.Equal(t, []byte{1, 2, 3}, tp.Task)

	env2, err := fr.read()
	require.NoError(t, err)
	assert.Equal(t, kindStop, env2.Kind)
}

func TestTaskCodecRoundTrip(t *testing.T) {
	b, err := encodeTask(42)
	require.NoError(t, err)
	v, err := decodeTaskInt(b)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestResultMapCodecRoundTrip(t *testing.T) {
	d, err := dataset.New([]int{2}, []float64{1, 2})
	require.NoError(t, err)
	in := map[int]*dataset.Dataset{0: d}

	b, err := encodeResultMap(in)
	require.NoError(t, err)
	out, err := decodeResultMap(b)
	require.NoError(t, err)
	assert.Equal(t, d.Shape(), out[0].Shape())
	assert.Equal(t, d.Raw(), out[0].Raw())
}
