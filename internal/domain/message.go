package domain

// Message is a logical unit submitted by a producer. The body is an arbitrary
// value that is serialized by the configured codec when the message is packed
// into a chunk. A message is owned by the pending queue until popped; after
// popping it is owned exclusively by the draining goroutine.
type Message struct {
	// Body is the pre-serialization message payload.
	Body interface{}

	// Attributes is an optional map of named, typed metadata values.
	Attributes map[string]Attribute
}

// Attribute is a typed metadata value attached to a message. Exactly one of
// the value fields is populated depending on DataType.
type Attribute struct {
	// DataType is the declared type tag (e.g. "String", "Number", "Binary").
	DataType string

	StringValue string
	BinaryValue []byte

	StringListValues []string
	BinaryListValues [][]byte
}

// WireSize returns the number of bytes this attribute contributes to an
// entry: the attribute name, the type tag, and every value form it carries.
func (a Attribute) WireSize(name string) int {
	size := len(name) + len(a.DataType) + len(a.StringValue) + len(a.BinaryValue)
	for _, s := range a.StringListValues {
		size += len(s)
	}
	for _, b := range a.BinaryListValues {
		size += len(b)
	}
	return size
}

// Entry is a message after body serialization, ready to be placed in a batch
// request. Batch-local ids are assigned at send time, fresh on every attempt;
// an Entry therefore carries no id of its own.
type Entry struct {
	// Body is the serialized message body.
	Body []byte

	// Attributes carries the original message attributes.
	Attributes map[string]Attribute

	// Size is the wire size of the entry: serialized body plus the wire
	// size of every attribute.
	Size int
}

// NewEntry builds an entry from a serialized body and the originating
// message's attributes, computing its wire size.
func NewEntry(body []byte, attrs map[string]Attribute) Entry {
	size := len(body)
	for name, a := range attrs {
		size += a.WireSize(name)
	}
	return Entry{Body: body, Attributes: attrs, Size: size}
}
