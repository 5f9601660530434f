// Package artifacts persists the three renditions of every inbound payload
// under one directory and serves them back by file name.
package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmdatafocus/requisition_inbound/config"
	"github.com/mmdatafocus/requisition_inbound/payload"
	"github.com/mmdatafocus/requisition_inbound/utils"
	"github.com/sirupsen/logrus"
)

const filePrefix = "inbound_"

// Files names the artifact triple written for one payload.
type Files struct {
	JSON string `json:"json"`
	XML  string `json:"xml"`
	CSV  string `json:"csv"`
}

// FileId is the shared base name of the triple.
func (f Files) FileId() string {
	return strings.TrimSuffix(f.JSON, ".json")
}

// Mirror receives a copy of each artifact after it is written locally.
type Mirror interface {
	Put(ctx context.Context, name string, contentType string, data []byte) error
}

type Writer struct {
	dir    string
	loc    *time.Location
	mirror Mirror
	now    func() time.Time
}

func NewWriter(dir string, loc *time.Location, mirror Mirror) *Writer {
	if loc == nil {
		loc = time.UTC
	}
	return &Writer{dir: dir, loc: loc, mirror: mirror, now: time.Now}
}

func (w *Writer) Dir() string {
	return w.dir
}

// BaseName is inbound_<YYYY-MM-DD_HH-MM-SS>_<uniqueId> in the writer's zone.
func (w *Writer) BaseName(t time.Time) string {
	return filePrefix + t.In(w.loc).Format(utils.FileTimestampLayout) + "_" + utils.UniqueId(t)
}

// Write renders and stores the JSON, XML and CSV artifacts for one payload.
func (w *Writer) Write(ctx context.Context, meta payload.Metadata, data payload.Value) (Files, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("create inbound dir: %w", err)
	}

	stamp := meta.Received
	if stamp.IsZero() {
		stamp = w.now()
	}
	base := w.BaseName(stamp)
	files := Files{
		JSON: base + ".json",
		XML:  base + ".xml",
		CSV:  base + ".csv",
	}

	jsonDoc, err := renderEnvelope(meta, data)
	if err != nil {
		return Files{}, fmt.Errorf("render json artifact: %w", err)
	}
	xmlDoc, err := payload.ToXMLDocument(meta, data)
	if err != nil {
		return Files{}, fmt.Errorf("render xml artifact: %w", err)
	}
	csvDoc := payload.ToCSV(payload.ToCSVRecord(meta, data))

	contents := []struct {
		name string
		data []byte
	}{
		{files.JSON, jsonDoc},
		{files.XML, []byte(xmlDoc)},
		{files.CSV, []byte(csvDoc)},
	}
	for _, c := range contents {
		if err := writeFileAtomic(filepath.Join(w.dir, c.name), c.data); err != nil {
			return Files{}, err
		}
	}

	if w.mirror != nil {
		logger := config.GetLogger()
		for _, c := range contents {
			if err := w.mirror.Put(ctx, c.name, ContentTypeFor(c.name), c.data); err != nil {
				logger.WithFields(logrus.Fields{
					"field": "artifactMirror",
					"file":  c.name,
				}).Warn("artifact mirror failed: " + err.Error())
			}
		}
	}
	return files, nil
}

// renderEnvelope pretty-prints {_metadata, data} with two-space indentation.
func renderEnvelope(meta payload.Metadata, data payload.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload.Envelope(meta, data)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
