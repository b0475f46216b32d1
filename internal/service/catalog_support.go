package service

import (
	"context"
	"mime/multipart"

	"go.uber.org/zap"

	"github.com/RealCodeCrafter/trt-backend/internal/auth"
	"github.com/RealCodeCrafter/trt-backend/internal/events"
	"github.com/RealCodeCrafter/trt-backend/internal/storage"
	apperrors "github.com/RealCodeCrafter/trt-backend/pkg/util/errorutil"
)

// catalogDeps are the collaborators shared by the part and category services.
type catalogDeps struct {
	store      storage.ImageStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// saveUploads stores every file; on failure the ones already saved are removed.
func (d catalogDeps) saveUploads(ctx context.Context, bucket string, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := d.store.Save(ctx, bucket, fh)
		if err != nil {
			d.discardImages(ctx, urls)
			return nil, apperrors.NewInternalMessage("failed to store image", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (d catalogDeps) discardImages(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := d.store.Delete(ctx, url); err != nil {
			d.logger.Warn("image delete failed", zap.String("url", url), zap.Error(err))
		}
	}
}

func (d catalogDeps) publish(ctx context.Context, eventType events.EventType, entityID int64, actor *auth.Identity, payload any) {
	if d.dispatcher == nil {
		return
	}
	var a events.Actor
	if actor != nil {
		a = events.Actor{UserID: actor.ID, Username: actor.Username, Role: actor.Role}
	}
	if err := d.dispatcher.Publish(ctx, events.NewEvent(eventType, entityID, a, payload)); err != nil {
		d.logger.Warn("event handlers failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

// removedImages returns the entries of old missing from kept.
func removedImages(old, kept []string) []string {
	keep := make(map[string]struct{}, len(kept))
	for _, k := range kept {
		keep[k] = struct{}{}
	}
	var removed []string
	for _, o := range old {
		if _, ok := keep[o]; !ok {
			removed = append(removed, o)
		}
	}
	return removed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
