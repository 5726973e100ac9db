package db

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"

	"beacon-admin/types"
)

var ErrEmptyProfileUpdate = errors.New("nothing to update")

// Profiles reads and edits the signed in administrator's account.
type Profiles struct {
	auth *auth.Client
}

func NewProfiles(ctx context.Context, app *firebase.App) (*Profiles, *auth.Client, error) {
	ac, err := app.Auth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get auth client: %w", err)
	}
	return &Profiles{auth: ac}, ac, nil
}

func profileFrom(u *auth.UserRecord) types.Profile {
	return types.Profile{
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.PhotoURL,
	}
}

func (p *Profiles) Get(ctx context.Context, uid string) (types.Profile, error) {
	u, err := p.auth.GetUser(ctx, uid)
	if err != nil {
		return types.Profile{}, fmt.Errorf("get user %s: %w", uid, err)
	}
	return profileFrom(u), nil
}

// Update applies the non nil fields of upd.
func (p *Profiles) Update(ctx context.Context, uid string, upd types.ProfileUpdate) (types.Profile, error) {
	params := &auth.UserToUpdate{}
	changed := false
	if upd.DisplayName != nil {
		params = params.DisplayName(*upd.DisplayName)
		changed = true
	}
	if upd.AvatarURL != nil {
		params = params.PhotoURL(*upd.AvatarURL)
		changed = true
	}
	if upd.Password != nil && *upd.Password != "" {
		params = params.Password(*upd.Password)
		changed = true
	}
	if !changed {
		return types.Profile{}, ErrEmptyProfileUpdate
	}

	u, err := p.auth.UpdateUser(ctx, uid, params)
	if err != nil {
		return types.Profile{}, fmt.Errorf("update user %s: %w", uid, err)
	}
	return profileFrom(u), nil
}
