package worker

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pydidas/pydidas-go/internal/dataset"
)

// encodeTask serializes a scan-frame-index task for the wire. pydidas's
// only task shape crossing the worker boundary is the int frame index an
// App's MultiprocessingGetTasks produces.
func encodeTask(task any) ([]byte, error) {
	return msgpack.Marshal(task)
}

func decodeTaskInt(b []byte) (int, error) {
	var v int
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// encodeResultMap serializes a node_id -> Dataset result map, delegating
// per-Dataset encoding to dataset.EncodeMsgpack so axis metadata survives
// the trip.
func encodeResultMap(result map[int]*dataset.Dataset) ([]byte, error) {
	raw := make(map[int][]byte, len(result))
	for id, d := range result {
		b, err := d.EncodeMsgpack()
		if err != nil {
			return nil, err
		}
		raw[id] = b
	}
	return msgpack.Marshal(raw)
}

func decodeResultMap(b []byte) (map[int]*dataset.Dataset, error) {
	var raw map[int][]byte
	if err := msgpack.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	out := make(map[int]*dataset.Dataset, len(raw))
	for id, db := range raw {
		d, err := dataset.DecodeMsgpack(db)
		if err != nil {
			return nil, err
		}
		out[id] = d
	}
	return out, nil
}
