package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-assets/pkg/activity"
	"github.com/goliatone/go-assets/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	tenant := uuid.New()
	hook := usersink.Hook{Sink: sink, TenantID: tenant}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	assetID := uuid.New().String()

	event := activity.BuildAssetEvent(activity.VerbSave, activity.AssetEventInput{
		ActorID:    actorID.String(),
		AssetID:    assetID,
		Kind:       "Texture",
		Path:       "textures/wood.png",
		Channel:    "assets",
		Metadata:   map[string]any{"bytes": 128},
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != actorID {
		t.Fatalf("expected actor %s got %s/%s", actorID, record.ActorID, record.UserID)
	}
	if record.TenantID != tenant {
		t.Fatalf("expected tenant %s got %s", tenant, record.TenantID)
	}
	if record.Verb != "save" || record.ObjectType != "Texture" || record.ObjectID != assetID {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "assets" {
		t.Fatalf("expected channel assets got %q", record.Channel)
	}
	if record.OccurredAt != now {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["path"] != "textures/wood.png" || record.Data["bytes"] != 128 {
		t.Fatalf("expected metadata passthrough got %v", record.Data)
	}
}

func TestHookNotifyIgnoresNonUUIDActor(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{
		Verb:       "load",
		ActorID:    "importer",
		ObjectType: "Mesh",
		ObjectID:   "1",
	})
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	if sink.records[0].ActorID != uuid.Nil {
		t.Fatalf("expected nil actor for non-uuid input")
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyDefaultsTimestamp(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       "add",
		ObjectType: "Shader",
		ObjectID:   "1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}
