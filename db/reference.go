package db

import (
	"context"
	"fmt"
	"slices"

	"cloud.google.com/go/firestore"

	"beacon-admin/types"
)

func getAll[T any](ctx context.Context, q firestore.Query) ([]T, error) {
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Ref.Path, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ListFeeders returns the feeders ordered by name.
func (s *Store) ListFeeders(ctx context.Context) ([]types.Feeder, error) {
	feeders, err := getAll[types.Feeder](ctx, s.client.Collection(feedersCollection).OrderBy("name", firestore.Asc))
	if err != nil {
		return nil, fmt.Errorf("list feeders: %w", err)
	}
	return feeders, nil
}

func (s *Store) InsertFeeder(ctx context.Context, f types.Feeder) (types.Feeder, error) {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		next, err := s.nextID(tx, feedersCollection)
		if err != nil {
			return err
		}
		f.ID = next
		return tx.Create(s.client.Collection(feedersCollection).Doc(docID(next)), f)
	})
	if err != nil {
		return types.Feeder{}, fmt.Errorf("insert feeder: %w", err)
	}
	return f, nil
}

func (s *Store) UpdateFeeder(ctx context.Context, f types.Feeder) error {
	_, err := s.client.Collection(feedersCollection).Doc(docID(f.ID)).Update(ctx, []firestore.Update{
		{Path: "name", Value: f.Name},
		{Path: "code", Value: f.Code},
	})
	if err != nil {
		return fmt.Errorf("update feeder %d: %w", f.ID, err)
	}
	return nil
}

func (s *Store) DeleteFeeder(ctx context.Context, id int64) error {
	if _, err := s.client.Collection(feedersCollection).Doc(docID(id)).Delete(ctx); err != nil {
		return fmt.Errorf("delete feeder %d: %w", id, err)
	}
	return nil
}

// FeederBarangayNames resolves the feeder_barangays join to sorted names.
// Association rows pointing at missing barangays are ignored.
func (s *Store) FeederBarangayNames(ctx context.Context, feederID int64) ([]string, error) {
	links, err := getAll[types.FeederBarangay](ctx, s.client.Collection(feederBarangaysCollection).Where("feeder_id", "==", feederID))
	if err != nil {
		return nil, fmt.Errorf("feeder barangays of %d: %w", feederID, err)
	}
	ids := make([]int64, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.BarangayID)
	}

	names := []string{}
	for _, chunk := range chunks(ids) {
		brgys, err := getAll[types.Barangay](ctx, s.client.Collection(barangaysCollection).Where("id", "in", chunk))
		if err != nil {
			return nil, fmt.Errorf("barangays of feeder %d: %w", feederID, err)
		}
		for _, b := range brgys {
			if b.Name != "" {
				names = append(names, b.Name)
			}
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) ListBarangays(ctx context.Context) ([]types.Barangay, error) {
	brgys, err := getAll[types.Barangay](ctx, s.client.Collection(barangaysCollection).OrderBy("name", firestore.Asc))
	if err != nil {
		return nil, fmt.Errorf("list barangays: %w", err)
	}
	return brgys, nil
}

func (s *Store) ListTeams(ctx context.Context) ([]types.DispatchTeam, error) {
	teams, err := getAll[types.DispatchTeam](ctx, s.client.Collection(teamsCollection).OrderBy("name", firestore.Asc))
	if err != nil {
		return nil, fmt.Errorf("list dispatch teams: %w", err)
	}
	return teams, nil
}

func (s *Store) InsertTeam(ctx context.Context, t types.DispatchTeam) (types.DispatchTeam, error) {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		next, err := s.nextID(tx, teamsCollection)
		if err != nil {
			return err
		}
		t.ID = next
		return tx.Create(s.client.Collection(teamsCollection).Doc(docID(next)), t)
	})
	if err != nil {
		return types.DispatchTeam{}, fmt.Errorf("insert dispatch team: %w", err)
	}
	return t, nil
}

func (s *Store) UpdateTeam(ctx context.Context, t types.DispatchTeam) error {
	_, err := s.client.Collection(teamsCollection).Doc(docID(t.ID)).Update(ctx, []firestore.Update{
		{Path: "name", Value: t.Name},
	})
	if err != nil {
		return fmt.Errorf("update dispatch team %d: %w", t.ID, err)
	}
	return nil
}

func (s *Store) DeleteTeam(ctx context.Context, id int64) error {
	if _, err := s.client.Collection(teamsCollection).Doc(docID(id)).Delete(ctx); err != nil {
		return fmt.Errorf("delete dispatch team %d: %w", id, err)
	}
	return nil
}
