// Package boltstore persists the last settled view of map sessions using
// BoltDB
package boltstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/kleinnic74/mapview/domain/geo"
	bolt "go.etcd.io/bbolt"
)

var (
	viewsBucket = []byte("views")
)

// ErrNotFound is returned when no view was saved under a given id
var ErrNotFound = errors.New("view not found")

// View is the persisted state of a map session
type View struct {
	Center  geo.LatLng `json:"center"`
	Zoom    float64    `json:"zoom"`
	SavedAt time.Time  `json:"savedAt"`
}

// ViewStore stores views by session id
type ViewStore struct {
	db *bolt.DB
}

// NewViewStore creates a ViewStore in the given BoltDB. The needed buckets are
// created if not yet available.
func NewViewStore(db *bolt.DB) (*ViewStore, error) {
	if err := db.Update(func(tx *bolt.Tx) (err error) {
		_, err = tx.CreateBucketIfNotExists(viewsBucket)
		return
	}); err != nil {
		return nil, fmt.Errorf("create views bucket: %w", err)
	}
	return &ViewStore{db: db}, nil
}

func (s *ViewStore) Save(id string, v View) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(viewsBucket).Put([]byte(id), encoded)
	})
}

func (s *ViewStore) Load(id string) (v View, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(viewsBucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &v)
	})
	return
}

func (s *ViewStore) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(viewsBucket).Delete([]byte(id))
	})
}

// Latest returns the id and view saved most recently
func (s *ViewStore) Latest() (id string, latest View, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		found := false
		return tx.Bucket(viewsBucket).ForEach(func(k, data []byte) error {
			var v View
			if err := json.Unmarshal(data, &v); err != nil {
				return fmt.Errorf("view %s: %w", k, err)
			}
			if !found || v.SavedAt.After(latest.SavedAt) {
				id, latest, found = string(k), v, true
			}
			return nil
		})
	})
	if err == nil && id == "" {
		err = ErrNotFound
	}
	return
}

// IDs returns the ids of all saved views in key order
func (s *ViewStore) IDs() (ids []string, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(viewsBucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			ids = append(ids, string(k))
		}
		return nil
	})
	return
}
