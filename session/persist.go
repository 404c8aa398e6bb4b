package session

import (
	"context"
	"time"

	"bitbucket.org/kleinnic74/mapview/events"
	"bitbucket.org/kleinnic74/mapview/logging"
	"bitbucket.org/kleinnic74/mapview/mapview"
	"bitbucket.org/kleinnic74/mapview/store/boltstore"
	"go.uber.org/zap"
)

// PersistViews saves every settled view published on bus until ctx is done.
// Intermediate animation frames are not saved.
func PersistViews(ctx context.Context, bus *events.Stream, store ViewStore) {
	log := logging.From(ctx)
	bus.Listen(ctx, func(e events.Event) {
		if e.Name != EventBounds {
			return
		}
		ev, ok := e.Data.(mapview.BoundsEvent)
		if !ok || ev.IsAnimating {
			return
		}
		v := boltstore.View{Center: ev.Center, Zoom: ev.Zoom, SavedAt: time.Now()}
		if err := store.Save(e.Session, v); err != nil {
			log.Warn("Failed to save view", zap.String("session", e.Session), zap.Error(err))
		}
	})
}
