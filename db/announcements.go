package db

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/apex/log"
	"google.golang.org/api/iterator"

	"beacon-admin/normalize"
	"beacon-admin/types"
)

func announcementFields(in types.AnnouncementInput) map[string]interface{} {
	return map[string]interface{}{
		"feeder_id":                in.FeederID,
		"type":                     string(in.Type),
		"cause":                    in.Cause,
		"location":                 in.Location,
		"areas_affected":           in.AreasAffected,
		"barangay":                 in.PrimaryBarangay(),
		"status":                   string(in.Status),
		"description":              in.Description,
		"estimated_restoration_at": in.EstimatedRestorationAt,
		"scheduled_at":             in.ScheduledAt,
		"restored_at":              in.RestoredAt,
		"latitude":                 in.Latitude,
		"longitude":                in.Longitude,
	}
}

func decodeAnnouncementRows(iter *firestore.DocumentIterator) ([]types.AnnouncementRow, error) {
	defer iter.Stop()
	rows := []types.AnnouncementRow{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate announcements: %w", err)
		}
		var row types.AnnouncementRow
		if err := doc.DataTo(&row); err != nil {
			log.WithError(err).WithField("doc", doc.Ref.ID).Warn("skipping malformed announcement")
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// joinImages attaches announcement_images rows to their parents.
func (s *Store) joinImages(ctx context.Context, rows []types.AnnouncementRow, all bool) error {
	if len(rows) == 0 {
		return nil
	}
	byParent := map[int64][]types.AnnouncementImage{}
	collect := func(q firestore.Query) error {
		docs, err := q.Documents(ctx).GetAll()
		if err != nil {
			return fmt.Errorf("load announcement images: %w", err)
		}
		for _, doc := range docs {
			var img types.AnnouncementImage
			if err := doc.DataTo(&img); err != nil {
				continue
			}
			img.ID = doc.Ref.ID
			byParent[img.AnnouncementID] = append(byParent[img.AnnouncementID], img)
		}
		return nil
	}

	images := s.client.Collection(announcementImagesCollection)
	if all {
		if err := collect(images.Query); err != nil {
			return err
		}
	} else {
		ids := make([]int64, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ID)
		}
		for _, chunk := range chunks(ids) {
			if err := collect(images.Where("announcement_id", "in", chunk)); err != nil {
				return err
			}
		}
	}

	for i := range rows {
		rows[i].AnnouncementImages = byParent[rows[i].ID]
	}
	return nil
}

// ListAnnouncements returns every announcement, newest first, with images merged.
func (s *Store) ListAnnouncements(ctx context.Context) ([]types.Announcement, error) {
	rows, err := decodeAnnouncementRows(s.client.Collection(announcementsCollection).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.joinImages(ctx, rows, true); err != nil {
		return nil, err
	}
	return normalize.Announcements(rows), nil
}

// RecentAnnouncements returns the newest limit announcements.
func (s *Store) RecentAnnouncements(ctx context.Context, limit int) ([]types.Announcement, error) {
	rows, err := decodeAnnouncementRows(s.client.Collection(announcementsCollection).
		OrderBy("created_at", firestore.Desc).
		Limit(limit).
		Documents(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.joinImages(ctx, rows, false); err != nil {
		return nil, err
	}
	return normalize.Announcements(rows), nil
}

// AnnouncementsByStatus returns announcements whose status is one of statuses.
func (s *Store) AnnouncementsByStatus(ctx context.Context, statuses ...types.Status) ([]types.Announcement, error) {
	values := make([]string, 0, len(statuses))
	for _, st := range statuses {
		values = append(values, string(st))
	}
	rows, err := decodeAnnouncementRows(s.client.Collection(announcementsCollection).
		Where("status", "in", values).
		Documents(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.joinImages(ctx, rows, false); err != nil {
		return nil, err
	}
	return normalize.Announcements(rows), nil
}

// AnnouncementsByID returns the announcements with the given ids in id order.
func (s *Store) AnnouncementsByID(ctx context.Context, ids []int64) ([]types.Announcement, error) {
	rows := []types.AnnouncementRow{}
	for _, chunk := range chunks(ids) {
		part, err := decodeAnnouncementRows(s.client.Collection(announcementsCollection).
			Where("id", "in", chunk).
			Documents(ctx))
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	if err := s.joinImages(ctx, rows, false); err != nil {
		return nil, err
	}
	slices.SortFunc(rows, func(a, b types.AnnouncementRow) int { return cmp.Compare(a.ID, b.ID) })
	return normalize.Announcements(rows), nil
}

// InsertAnnouncement creates an announcement under the next counter id.
func (s *Store) InsertAnnouncement(ctx context.Context, in types.AnnouncementInput, createdAt time.Time) (int64, error) {
	var id int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		next, err := s.nextID(tx, announcementsCollection)
		if err != nil {
			return err
		}
		fields := announcementFields(in)
		fields["id"] = next
		fields["created_at"] = createdAt
		fields["updated_at"] = nil

		ref := s.client.Collection(announcementsCollection).Doc(docID(next))
		if err := tx.Create(ref, fields); err != nil {
			return fmt.Errorf("create announcement %d: %w", next, err)
		}
		id = next
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.WithField("announcement", id).Info("announcement created")
	return id, nil
}

// UpdateAnnouncements writes the same field set to every id.
func (s *Store) UpdateAnnouncements(ctx context.Context, ids []int64, in types.AnnouncementInput, updatedAt time.Time) error {
	fields := announcementFields(in)
	fields["updated_at"] = updatedAt
	if in.RestoredAt == nil {
		// keep an earlier restoration time when the status is not Completed now
		delete(fields, "restored_at")
	}

	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	batch := s.client.Batch()
	for _, id := range ids {
		batch.Update(s.client.Collection(announcementsCollection).Doc(docID(id)), updates)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("update announcements %v: %w", ids, err)
	}
	return nil
}

// SetAnnouncementCoordinates stores geocoded coordinates.
func (s *Store) SetAnnouncementCoordinates(ctx context.Context, ids []int64, lat, lng float64) error {
	batch := s.client.Batch()
	for _, id := range ids {
		batch.Update(s.client.Collection(announcementsCollection).Doc(docID(id)), []firestore.Update{
			{Path: "latitude", Value: lat},
			{Path: "longitude", Value: lng},
		})
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("set coordinates %v: %w", ids, err)
	}
	return nil
}

// InsertAnnouncementImages adds one image row per url.
func (s *Store) InsertAnnouncementImages(ctx context.Context, announcementID int64, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	batch := s.client.Batch()
	images := s.client.Collection(announcementImagesCollection)
	for _, url := range urls {
		batch.Create(images.NewDoc(), types.AnnouncementImage{AnnouncementID: announcementID, ImageURL: url})
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("insert images for announcement %d: %w", announcementID, err)
	}
	return nil
}

// ReplaceAnnouncementImages deletes every image row of ids and inserts urls
// for each of them in one transaction.
func (s *Store) ReplaceAnnouncementImages(ctx context.Context, ids []int64, urls []string) error {
	images := s.client.Collection(announcementImagesCollection)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var stale []*firestore.DocumentSnapshot
		for _, chunk := range chunks(ids) {
			docs, err := tx.Documents(images.Where("announcement_id", "in", chunk)).GetAll()
			if err != nil {
				return fmt.Errorf("read images of %v: %w", chunk, err)
			}
			stale = append(stale, docs...)
		}

		for _, doc := range stale {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		for _, id := range ids {
			for _, url := range urls {
				if err := tx.Create(images.NewDoc(), types.AnnouncementImage{AnnouncementID: id, ImageURL: url}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// CountQuery counts announcements whose Field falls in [From, To]. An empty
// Status counts every status.
type CountQuery struct {
	Status types.Status
	Field  string
	From   time.Time
	To     time.Time
}

func (s *Store) CountAnnouncements(ctx context.Context, q CountQuery) (int, error) {
	query := s.client.Collection(announcementsCollection).
		Where(q.Field, ">=", q.From).
		Where(q.Field, "<=", q.To)
	if q.Status != "" {
		query = query.Where("status", "==", string(q.Status))
	}

	res, err := query.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count announcements: %w", err)
	}
	return countValue(res)
}

func countValue(res firestore.AggregationResult) (int, error) {
	v, ok := res["all"]
	if !ok {
		return 0, fmt.Errorf("count missing from aggregation result")
	}
	pb, ok := v.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count type %T", v)
	}
	return int(pb.GetIntegerValue()), nil
}
