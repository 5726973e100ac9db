package db

import (
	"context"
	"testing"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"beacon-admin/types"
)

func TestChunks(t *testing.T) {
	ids := make([]int64, 65)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	got := chunks(ids)
	require.Len(t, got, 3)
	assert.Len(t, got[0], 30)
	assert.Len(t, got[1], 30)
	assert.Equal(t, []int64{61, 62, 63, 64, 65}, got[2])
	assert.Empty(t, chunks(nil))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t,
		"https://storage.googleapis.com/announcements_images/public/1-ab-pole%20top.jpg",
		PublicURL("announcements_images", "public/1-ab-pole top.jpg"))
}

func TestCountValue(t *testing.T) {
	n, err := countValue(firestore.AggregationResult{
		"all": &firestorepb.Value{ValueType: &firestorepb.Value_IntegerValue{IntegerValue: 7}},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = countValue(firestore.AggregationResult{})
	assert.Error(t, err)
}

func TestAnnouncementFieldsPrimaryBarangay(t *testing.T) {
	fields := announcementFields(types.AnnouncementInput{
		FeederID:      7,
		Type:          types.Unscheduled,
		AreasAffected: []string{"A", "B"},
		Status:        types.StatusReported,
	})
	assert.Equal(t, "A", fields["barangay"])
	assert.Equal(t, []string{"A", "B"}, fields["areas_affected"])
	assert.Equal(t, "unscheduled", fields["type"])
	assert.Equal(t, int64(7), fields["feeder_id"])
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(status.Error(codes.NotFound, "missing")))
	assert.False(t, IsNotFound(status.Error(codes.Unavailable, "down")))
	assert.Equal(t, "42", docID(42))
}

func TestUnreadNotificationsQuery(t *testing.T) {
	// the client dials lazily, nothing listens on the emulator address
	t.Setenv("FIRESTORE_EMULATOR_HOST", "localhost:8681")
	client, err := firestore.NewClient(context.Background(), "beacon-test")
	require.NoError(t, err)
	defer client.Close()

	s := NewStore(client)
	q := s.unreadNotifications("admin-1")
	assert.NotNil(t, q.NewAggregationQuery().WithCount("all"))
}
