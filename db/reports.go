package db

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/apex/log"
	"google.golang.org/api/iterator"

	"beacon-admin/types"
)

func decodeReports(iter *firestore.DocumentIterator) ([]types.Report, error) {
	defer iter.Stop()
	reports := []types.Report{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate reports: %w", err)
		}
		var r types.Report
		if err := doc.DataTo(&r); err != nil {
			log.WithError(err).WithField("doc", doc.Ref.ID).Warn("skipping malformed report")
			continue
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// ListReports returns every report, oldest first.
func (s *Store) ListReports(ctx context.Context) ([]types.Report, error) {
	iter := s.client.Collection(reportsCollection).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	return decodeReports(iter)
}

// ReportsByStatus returns the reports in one status, oldest first.
func (s *Store) ReportsByStatus(ctx context.Context, st types.Status) ([]types.Report, error) {
	iter := s.client.Collection(reportsCollection).
		Where("status", "==", string(st)).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	return decodeReports(iter)
}

// MarkReportsAnnounced flips the given reports to Announced.
func (s *Store) MarkReportsAnnounced(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(ids))
	for _, id := range ids {
		ref := s.client.Collection(reportsCollection).Doc(docID(id))
		job, err := bw.Update(ref, []firestore.Update{
			{Path: "status", Value: string(types.StatusAnnounced)},
			{Path: "announced_at", Value: at},
		})
		if err != nil {
			bw.End()
			return fmt.Errorf("enqueue report %d: %w", id, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("update report %d: %w", ids[i], err)
		}
	}
	log.WithField("count", len(ids)).Info("reports marked announced")
	return nil
}
