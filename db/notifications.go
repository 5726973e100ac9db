package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"beacon-admin/types"
)

func (s *Store) unreadNotifications(uid string) firestore.Query {
	return s.client.Collection(notificationsCollection).
		Where("user_id", "==", uid).
		Where("is_read", "==", false)
}

// CountUnreadNotifications counts the unread notifications of one user.
func (s *Store) CountUnreadNotifications(ctx context.Context, uid string) (int, error) {
	q := s.unreadNotifications(uid)
	res, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return countValue(res)
}

// ListNotifications returns the newest notifications of one user.
func (s *Store) ListNotifications(ctx context.Context, uid string, limit int) ([]types.Notification, error) {
	docs, err := s.client.Collection(notificationsCollection).
		Where("user_id", "==", uid).
		OrderBy("created_at", firestore.Desc).
		Limit(limit).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]types.Notification, 0, len(docs))
	for _, doc := range docs {
		var n types.Notification
		if err := doc.DataTo(&n); err != nil {
			continue
		}
		n.ID = doc.Ref.ID
		out = append(out, n)
	}
	return out, nil
}

// MarkNotificationsRead flags every unread notification of uid as read.
func (s *Store) MarkNotificationsRead(ctx context.Context, uid string) (int, error) {
	docs, err := s.unreadNotifications(uid).Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("load unread notifications: %w", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	bw := s.client.BulkWriter(ctx)
	for _, doc := range docs {
		if _, err := bw.Update(doc.Ref, []firestore.Update{{Path: "is_read", Value: true}}); err != nil {
			bw.End()
			return 0, fmt.Errorf("enqueue notification %s: %w", doc.Ref.ID, err)
		}
	}
	bw.End()
	return len(docs), nil
}
