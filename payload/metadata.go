package payload

import "time"

// Metadata describes how a payload arrived. It is stored next to the payload
// in every artifact and copied onto the header row.
type Metadata struct {
	ReceivedAt  string    `json:"received_at"`
	RemoteIp    string    `json:"remote_ip"`
	UserAgent   string    `json:"user_agent"`
	ContentType string    `json:"content_type"`
	Received    time.Time `json:"-"`
}

// Value renders the metadata as an ordered object.
func (m Metadata) Value() Value {
	return ObjectValue(
		Member{Key: "received_at", Value: StringValue(m.ReceivedAt)},
		Member{Key: "remote_ip", Value: StringValue(m.RemoteIp)},
		Member{Key: "user_agent", Value: StringValue(m.UserAgent)},
		Member{Key: "content_type", Value: StringValue(m.ContentType)},
	)
}

// Envelope is the {_metadata, data} document written to the JSON artifact.
func Envelope(meta Metadata, data Value) Value {
	return ObjectValue(
		Member{Key: "_metadata", Value: meta.Value()},
		Member{Key: "data", Value: data},
	)
}
