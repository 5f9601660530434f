package payload

import "strings"

// MetadataRecord starts a CSV record with the _metadata_* columns.
func MetadataRecord(meta Metadata) *Record {
	rec := NewRecord()
	rec.Set("_metadata_received_at", meta.ReceivedAt)
	rec.Set("_metadata_remote_ip", meta.RemoteIp)
	rec.Set("_metadata_user_agent", meta.UserAgent)
	rec.Set("_metadata_content_type", meta.ContentType)
	return rec
}

// ToCSVRecord is the metadata columns followed by the flattened payload.
func ToCSVRecord(meta Metadata, data Value) *Record {
	rec := MetadataRecord(meta)
	FlattenInto(rec, data, "")
	return rec
}

// ToCSV renders a record as a header line and a single value line.
func ToCSV(rec *Record) string {
	var b strings.Builder
	writeCSVLine(&b, rec.Keys())
	writeCSVLine(&b, rec.Values())
	return b.String()
}

func writeCSVLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EscapeCSVField(f))
	}
	b.WriteByte('\n')
}

// EscapeCSVField quotes a field containing a comma, a double quote or a line
// break, doubling embedded quotes. Anything else is written as is.
func EscapeCSVField(f string) string {
	if !strings.ContainsAny(f, ",\"\n\r") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}
