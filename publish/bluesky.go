// Package publish posts newly created announcements to the utility's
// Bluesky account.
package publish

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/apex/log"
	comatproto "github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"

	"beacon-admin/types"
)

const (
	DefaultHost = "https://bsky.social"

	postCollection = "app.bsky.feed.post"
	maxPostRunes   = 300
)

// Bluesky posts with an app password. The session is created on first use
// and reused until a post fails.
type Bluesky struct {
	handle   string
	password string
	location *time.Location

	mu     sync.Mutex
	client *xrpc.Client
}

func NewBluesky(host, handle, appPassword string, loc *time.Location) *Bluesky {
	if host == "" {
		host = DefaultHost
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Bluesky{
		handle:   handle,
		password: appPassword,
		location: loc,
		client: &xrpc.Client{
			Client: &http.Client{Timeout: 10 * time.Second},
			Host:   host,
		},
	}
}

func (b *Bluesky) login(ctx context.Context) error {
	if b.client.Auth != nil {
		return nil
	}
	out, err := comatproto.ServerCreateSession(ctx, b.client, &comatproto.ServerCreateSession_Input{
		Identifier: b.handle,
		Password:   b.password,
	})
	if err != nil {
		return fmt.Errorf("bluesky login as %s: %w", b.handle, err)
	}
	b.client.Auth = &xrpc.AuthInfo{
		AccessJwt:  out.AccessJwt,
		RefreshJwt: out.RefreshJwt,
		Handle:     out.Handle,
		Did:        out.Did,
	}
	return nil
}

// PublishAnnouncement posts a short public notice for a.
func (b *Bluesky) PublishAnnouncement(ctx context.Context, a types.Announcement) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.login(ctx); err != nil {
		return err
	}

	post := &bsky.FeedPost{
		Text:      PostText(a, b.location),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Langs:     []string{"en"},
	}
	out, err := comatproto.RepoCreateRecord(ctx, b.client, &comatproto.RepoCreateRecord_Input{
		Collection: postCollection,
		Repo:       b.client.Auth.Did,
		Record:     &lexutil.LexiconTypeDecoder{Val: post},
	})
	if err != nil {
		// force a fresh session next time in case the token expired
		b.client.Auth = nil
		return fmt.Errorf("bluesky post: %w", err)
	}
	log.WithField("announcement", a.ID).WithField("uri", out.Uri).Info("announcement posted to bluesky")
	return nil
}

// PostText renders the public notice, cut to the post length limit.
func PostText(a types.Announcement, loc *time.Location) string {
	var sb strings.Builder
	kind := "Unscheduled"
	if a.Type == types.Scheduled {
		kind = "Scheduled"
	}
	fmt.Fprintf(&sb, "%s power interruption: %s", kind, a.Title())
	if a.FeederID != 0 {
		fmt.Fprintf(&sb, " (Feeder %d)", a.FeederID)
	}
	if len(a.AreasAffected) > 0 {
		fmt.Fprintf(&sb, "\nAreas: %s", strings.Join(a.AreasAffected, ", "))
	}
	if a.Cause != "" && a.Cause != a.Title() {
		fmt.Fprintf(&sb, "\nCause: %s", a.Cause)
	}
	if a.ScheduledAt != nil {
		fmt.Fprintf(&sb, "\nSchedule: %s", a.ScheduledAt.In(loc).Format("Jan 2, 3:04 PM"))
	}
	if a.EstimatedRestorationAt != nil {
		fmt.Fprintf(&sb, "\nEstimated restoration: %s", a.EstimatedRestorationAt.In(loc).Format("Jan 2, 3:04 PM"))
	}
	fmt.Fprintf(&sb, "\nStatus: %s", a.Status)
	return truncate(sb.String(), maxPostRunes)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
