package types

import "time"

type Feeder struct {
	ID   int64  `firestore:"id" json:"id"`
	Name string `firestore:"name" json:"name"`
	Code string `firestore:"code" json:"code"`
}

// DisplayName falls back to the FD-<id> label used on the feeder toggles.
func (f Feeder) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return "FD-" + itoa(f.ID)
}

type Barangay struct {
	ID   int64  `firestore:"id" json:"id"`
	Name string `firestore:"name" json:"name"`
}

type FeederBarangay struct {
	FeederID   int64 `firestore:"feeder_id" json:"feeder_id"`
	BarangayID int64 `firestore:"barangay_id" json:"barangay_id"`
}

type DispatchTeam struct {
	ID   int64  `firestore:"id" json:"id"`
	Name string `firestore:"name" json:"name"`
}

type Notification struct {
	ID        string    `firestore:"-" json:"id"`
	UserID    string    `firestore:"user_id" json:"user_id"`
	Message   string    `firestore:"message" json:"message"`
	IsRead    bool      `firestore:"is_read" json:"is_read"`
	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
}

type Profile struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

type ProfileUpdate struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Password    *string `json:"password"`
}
