package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmdatafocus/requisition_inbound/artifacts"
	"github.com/mmdatafocus/requisition_inbound/models"
	"github.com/mmdatafocus/requisition_inbound/payload"
	"github.com/mmdatafocus/requisition_inbound/testutil"
	"github.com/mmdatafocus/requisition_inbound/utils"
)

func TestFindAndRemoveOrphans(t *testing.T) {
	db := testutil.OpenTestDB(t)
	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	dir := t.TempDir()
	old := time.Now().Add(-time.Hour)
	for _, name := range []string{
		"inbound_kept.json", "inbound_kept.xml", "inbound_kept.csv",
		"inbound_lost.json", "inbound_lost.xml", "inbound_lost.csv",
		".gitkeep",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatalf("chtimes %s: %v", name, err)
		}
	}
	header := &models.Header{
		FileId:       "inbound_kept",
		ReceivedAt:   time.Now().UTC(),
		JsonFilename: "inbound_kept.json",
		XmlFilename:  "inbound_kept.xml",
		CsvFilename:  "inbound_kept.csv",
	}
	if err := db.Create(header).Error; err != nil {
		t.Fatalf("create header: %v", err)
	}

	cutoff := time.Now().Add(-defaultOrphanAge)
	orphans, err := findOrphans(context.Background(), db, dir, cutoff)
	if err != nil {
		t.Fatalf("findOrphans: %v", err)
	}
	if len(orphans) != 1 || orphans[0].FileId != "inbound_lost" || len(orphans[0].Files) != 3 {
		t.Fatalf("orphans = %+v", orphans)
	}

	if err := removeOrphans(dir, orphans); err != nil {
		t.Fatalf("removeOrphans: %v", err)
	}
	left, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(left) != 4 {
		t.Fatalf("left %d entries, want 4", len(left))
	}
	orphans, err = findOrphans(context.Background(), db, dir, cutoff)
	if err != nil || len(orphans) != 0 {
		t.Fatalf("after removal orphans = %+v, err = %v", orphans, err)
	}
}

// A triple written moments ago belongs to an ingestion that has not committed yet.
func TestFindOrphansSkipsInFlightIngestion(t *testing.T) {
	db := testutil.OpenTestDB(t)
	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	dir := t.TempDir()
	ctx := context.Background()

	data, err := payload.ParseObject([]byte(`{"id":"REQ-9","requisition-lines":[{"line-num":1}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	received := time.Now()
	meta := payload.Metadata{ReceivedAt: utils.FormatDate(received, time.UTC), Received: received}
	files, err := artifacts.NewWriter(dir, time.UTC, nil).Write(ctx, meta, data)
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	orphans, err := findOrphans(ctx, db, dir, time.Now().Add(-defaultOrphanAge))
	if err != nil {
		t.Fatalf("findOrphans: %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("fresh triple reported as orphan: %+v", orphans)
	}
	if err := removeOrphans(dir, orphans); err != nil {
		t.Fatalf("removeOrphans: %v", err)
	}

	if _, err := models.NewIngestor(db, nil, "").Save(ctx, meta, data, files); err != nil {
		t.Fatalf("Save: %v", err)
	}
	for _, name := range []string{files.JSON, files.XML, files.CSV} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("committed header points at missing artifact %s: %v", name, err)
		}
	}

	// Once committed the triple is never an orphan, whatever its age.
	orphans, err = findOrphans(ctx, db, dir, time.Now().Add(time.Minute))
	if err != nil || len(orphans) != 0 {
		t.Fatalf("orphans = %+v, err = %v", orphans, err)
	}
}

func TestHashPasswordCommand(t *testing.T) {
	cmd := hashPasswordCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"s3cret"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	hashed := strings.TrimSpace(out.String())
	if err := utils.ComparePassword(hashed, "s3cret"); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}

func TestEvictRejectsBadIds(t *testing.T) {
	cmd := evictCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"12", "abc"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), `"abc"`) {
		t.Fatalf("err = %v", err)
	}
}
