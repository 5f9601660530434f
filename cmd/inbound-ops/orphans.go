package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/requisition_inbound/artifacts"
	"github.com/mmdatafocus/requisition_inbound/config"
	"github.com/mmdatafocus/requisition_inbound/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const orphansLockKey = "lock:inbound-orphans"

const defaultOrphanAge = 10 * time.Minute

// Orphan is an artifact triple whose database transaction never committed.
type Orphan struct {
	FileId  string
	Files   []string
	ModTime time.Time
}

func orphansCmd() *cobra.Command {
	var (
		deleteFiles bool
		olderThan   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List artifacts that have no header row",
		Long: `Artifacts are written before the header transaction runs, so a failed
insert leaves its json/xml/csv triple behind. This command lists those
triples and, with --delete, removes them.

Triples modified within --older-than are skipped: their ingestion may
still be running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings, db, closeFn, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			if deleteFiles && settings.RedisAddress != "" {
				if err := config.ConnectRedisWithRetry(ctx, settings.RedisAddress); err != nil {
					return err
				}
				defer config.CloseRedis()
				release, err := obtainOrphansLock(ctx)
				if err != nil {
					return err
				}
				defer release()
			}

			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			orphans, err := findOrphans(ctx, db, settings.InboundDir, time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, o := range orphans {
				fmt.Fprintf(out, "%s\t%s\t%v\n", o.FileId, o.ModTime.Format(time.RFC3339), o.Files)
			}
			if !deleteFiles {
				fmt.Fprintf(out, "%d orphan(s)\n", len(orphans))
				return nil
			}
			if err := removeOrphans(settings.InboundDir, orphans); err != nil {
				return err
			}
			fmt.Fprintf(out, "removed %d orphan(s)\n", len(orphans))
			return nil
		},
	}
	cmd.Flags().BoolVar(&deleteFiles, "delete", false, "remove the orphaned files")
	cmd.Flags().DurationVar(&olderThan, "older-than", defaultOrphanAge, "only consider triples last modified before now minus this age")
	return cmd
}

// obtainOrphansLock keeps two cleanup runs from racing on the same directory.
func obtainOrphansLock(ctx context.Context) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, errors.New("redis lock is nil")
	}
	lock, err := locker.Obtain(ctx, orphansLockKey, 5*time.Minute, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, "orphans.go", "obtainOrphansLock", "Could not obtain lock", orphansLockKey, err)
		return nil, errors.New("another orphan cleanup is running")
	} else if err != nil {
		config.LogError(logger, "orphans.go", "obtainOrphansLock", "Error obtaining lock", orphansLockKey, err)
		return nil, err
	}
	return func() { _ = lock.Release(ctx) }, nil
}

// findOrphans returns the triples without a header row whose newest file
// was modified before cutoff.
func findOrphans(ctx context.Context, db *gorm.DB, dir string, cutoff time.Time) ([]Orphan, error) {
	sets, err := artifacts.ListFileIds(dir)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	ids := make([]string, 0, len(sets))
	for id, set := range sets {
		if set.ModTime.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	known, err := models.FileIdsWithHeaders(ctx, db, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup headers: %w", err)
	}
	orphans := []Orphan{}
	for _, id := range ids {
		if !known[id] {
			orphans = append(orphans, Orphan{FileId: id, Files: sets[id].Names, ModTime: sets[id].ModTime})
		}
	}
	return orphans, nil
}

func removeOrphans(dir string, orphans []Orphan) error {
	logger := config.GetLogger()
	var errs []error
	for _, o := range orphans {
		if err := artifacts.Remove(dir, o.Files...); err != nil {
			errs = append(errs, err)
			continue
		}
		logger.WithFields(logrus.Fields{"file_id": o.FileId, "files": o.Files}).Info("removed orphaned artifacts")
	}
	return errors.Join(errs...)
}
