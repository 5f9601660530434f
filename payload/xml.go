package payload

import (
	"strings"

	"github.com/beevik/etree"
)

const xmlRootElement = "inbound"

// ToXMLDocument renders <inbound><_metadata/><data/></inbound> with a UTF-8
// declaration and two-space indentation.
//
// Objects become nested elements. Array elements repeat the element name of
// the array itself. Purely numeric object keys become item_<N>.
func ToXMLDocument(meta Metadata, data Value) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(xmlRootElement)
	appendXMLValue(root, "_metadata", meta.Value())
	appendXMLValue(root, "data", data)
	doc.Indent(2)
	return doc.WriteToString()
}

func appendXMLValue(parent *etree.Element, name string, v Value) {
	switch v.Kind() {
	case Array:
		for _, e := range v.Elements() {
			appendXMLValue(parent, name, e)
		}
	case Object:
		el := parent.CreateElement(name)
		for _, m := range v.Members() {
			appendXMLValue(el, ElementName(m.Key), m.Value)
		}
	case Null:
		parent.CreateElement(name)
	default:
		parent.CreateElement(name).SetText(v.Text())
	}
}

// ElementName maps an object key to a valid XML element name.
func ElementName(key string) string {
	if isDigits(key) {
		return "item_" + key
	}
	var b strings.Builder
	for _, r := range key {
		if isNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	// XML names cannot be empty or start with a digit or hyphen.
	if name == "" || name[0] == '-' || (name[0] >= '0' && name[0] <= '9') {
		name = "_" + name
	}
	return name
}

func isNameRune(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
