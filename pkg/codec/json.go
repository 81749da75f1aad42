package codec

import "encoding/json"

// JSON encodes message bodies with encoding/json. It supports batch
// encoding: a list of bodies becomes one JSON array envelope.
type JSON struct{}

// Encode serializes one body as JSON.
func (JSON) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// EncodeBatch serializes a list of bodies as a single JSON array.
func (JSON) EncodeBatch(vs []interface{}) ([]byte, error) {
	return json.Marshal(vs)
}

// ContentType returns the JSON media type.
func (JSON) ContentType() string {
	return "application/json"
}
