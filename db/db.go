package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/apex/log"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	reportsCollection            = "reports"
	announcementsCollection      = "announcements"
	announcementImagesCollection = "announcement_images"
	feedersCollection            = "feeders"
	feederBarangaysCollection    = "feeder_barangays"
	barangaysCollection          = "barangays"
	teamsCollection              = "dispatch_teams"
	notificationsCollection      = "notifications"
	countersCollection           = "counters"

	// Firestore caps "in" filters at 30 values.
	inQueryLimit = 30
)

// Firebase app and Firestore client are process wide singletons.
var (
	app        *firebase.App
	client     *firestore.Client
	clientOnce sync.Once
	clientErr  error
)

// InitFirebase initializes the Firebase app from base64 encoded service
// account credentials and returns it with its Firestore client.
func InitFirebase(ctx context.Context, encodedCreds, projectID string) (*firebase.App, *firestore.Client, error) {
	clientOnce.Do(func() {
		creds, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			clientErr = fmt.Errorf("decode firebase credentials: %w", err)
			return
		}

		var cfg *firebase.Config
		if projectID != "" {
			cfg = &firebase.Config{ProjectID: projectID}
		}
		app, err = firebase.NewApp(ctx, cfg, option.WithCredentialsJSON(creds))
		if err != nil {
			clientErr = fmt.Errorf("initialize firebase app: %w", err)
			return
		}

		client, err = app.Firestore(ctx)
		if err != nil {
			clientErr = fmt.Errorf("get firestore client: %w", err)
			return
		}
		log.Info("firestore client initialized")
	})

	return app, client, clientErr
}

// CloseFirestore closes the Firestore client.
func CloseFirestore() {
	if client != nil {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("closing firestore client")
		}
	}
}

// Store is the remote data gateway over the Firestore collections.
// Documents of id keyed collections use the decimal id as document id.
type Store struct {
	client *firestore.Client
}

func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// nextID increments the named counter document inside tx.
func (s *Store) nextID(tx *firestore.Transaction, counter string) (int64, error) {
	ref := s.client.Collection(countersCollection).Doc(counter)
	snap, err := tx.Get(ref)
	var next int64 = 1
	if err != nil {
		if status.Code(err) != codes.NotFound {
			return 0, fmt.Errorf("read counter %s: %w", counter, err)
		}
	} else if v, ok := snap.Data()["next"].(int64); ok && v > 0 {
		next = v
	}
	if err := tx.Set(ref, map[string]interface{}{"next": next + 1}); err != nil {
		return 0, fmt.Errorf("bump counter %s: %w", counter, err)
	}
	return next, nil
}

// chunks splits ids for "in" queries.
func chunks(ids []int64) [][]int64 {
	var out [][]int64
	for start := 0; start < len(ids); start += inQueryLimit {
		end := min(start+inQueryLimit, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

// IsNotFound reports whether err is a Firestore not found status.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
