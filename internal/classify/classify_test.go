package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/tapwake/tapwake/internal/jsonval"
	"github.com/tapwake/tapwake/internal/launch"
)

// fakePending is a single-use pending payload source.
type fakePending struct {
	payload string
	set     bool
	err     error
	takes   int
}

func (f *fakePending) TakePending(ctx context.Context) (string, bool, error) {
	f.takes++
	if f.err != nil {
		return "", false, f.err
	}
	if !f.set {
		return "", false, nil
	}
	f.set = false
	return f.payload, true, nil
}

func newTestClassifier(pending *fakePending) *Classifier {
	return New(pending, nil)
}

func decodePayload(t *testing.T, ev launch.Event) jsonval.Object {
	t.Helper()
	obj, err := jsonval.DecodeObject([]byte(ev.Payload))
	if err != nil {
		t.Fatalf("event payload %q is not a JSON object: %v", ev.Payload, err)
	}
	return obj
}

func TestClassify_DeepLinkWins(t *testing.T) {
	pending := &fakePending{}
	c := newTestClassifier(pending)

	sig := Signal{
		URL:    "myapp://product/123",
		Action: ActionNotificationTapped,
		Extras: map[string]string{ExtraPayload: `{"id":1}`},
	}
	ev, ok := c.Classify(context.Background(), sig, true)
	if !ok {
		t.Fatal("Classify() produced no event")
	}
	if ev.Source != launch.SourceDeepLink {
		t.Errorf("Source = %v, want SourceDeepLink", ev.Source)
	}
	if ev.RawURL != "myapp://product/123" {
		t.Errorf("RawURL = %q", ev.RawURL)
	}
	if !ev.DuringInit {
		t.Error("DuringInit = false, want true")
	}
	if pending.takes != 0 {
		t.Error("deep link classification consumed the pending payload")
	}
}

func TestClassify_NotificationMarkers(t *testing.T) {
	tests := []struct {
		name string
		sig  Signal
	}{
		{"tapped action", Signal{Action: ActionNotificationTapped}},
		{"select action", Signal{Action: ActionSelectNotification}},
		{"launched extra", Signal{Extras: map[string]string{ExtraLaunchedFromNotification: "true"}}},
		{"payload extra presence", Signal{Extras: map[string]string{ExtraPayload: `{"a":1}`}}},
		{"remote payload", Signal{RemotePayload: `{"b":2}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(&fakePending{})
			ev, ok := c.Classify(context.Background(), tt.sig, false)
			if !ok {
				t.Fatal("Classify() produced no event")
			}
			if ev.Source != launch.SourceNotification {
				t.Errorf("Source = %v, want SourceNotification", ev.Source)
			}
			if ev.DuringInit {
				t.Error("DuringInit = true, want false")
			}
			if ev.ID == "" {
				t.Error("ID is empty")
			}
		})
	}
}

func TestClassify_NoMarkerNoEvent(t *testing.T) {
	c := newTestClassifier(&fakePending{})

	_, ok := c.Classify(context.Background(), Signal{Action: "MAIN", Extras: map[string]string{"cold": "1"}}, true)
	if ok {
		t.Error("plain launch produced an event")
	}
}

func TestClassify_StructuredPayload(t *testing.T) {
	c := newTestClassifier(&fakePending{})

	sig := Signal{Action: ActionNotificationTapped, Extras: map[string]string{ExtraPayload: `{"id":5}`}}
	ev, _ := c.Classify(context.Background(), sig, true)

	if ev.Payload != `{"id":5}` {
		t.Errorf("Payload = %q, want {\"id\":5}", ev.Payload)
	}
}

func TestClassify_UnparsablePayloadWrapped(t *testing.T) {
	c := newTestClassifier(&fakePending{})

	sig := Signal{Action: ActionNotificationTapped, Extras: map[string]string{ExtraPayload: `not json`}}
	ev, _ := c.Classify(context.Background(), sig, true)

	obj := decodePayload(t, ev)
	if obj[ExtraPayload] != jsonval.String("not json") {
		t.Errorf("payload = %v, want raw string wrapped under %q", obj, ExtraPayload)
	}
}

func TestClassify_PendingMerge_FreshWins(t *testing.T) {
	pending := &fakePending{payload: `{"id":99,"campaign":"summer"}`, set: true}
	c := newTestClassifier(pending)

	sig := Signal{Action: ActionNotificationTapped, Extras: map[string]string{ExtraPayload: `{"id":5}`}}
	ev, _ := c.Classify(context.Background(), sig, true)

	obj := decodePayload(t, ev)
	if obj["id"] != jsonval.Number(5) {
		t.Errorf("id = %v, fresh payload must win", obj["id"])
	}
	if obj["campaign"] != jsonval.String("summer") {
		t.Errorf("campaign = %v, pending must fill absent keys", obj["campaign"])
	}
	if pending.set {
		t.Error("pending payload not deleted after merge")
	}
}

func TestClassify_ExtrasFillRemainingKeys(t *testing.T) {
	c := newTestClassifier(&fakePending{})

	sig := Signal{
		Action: ActionNotificationTapped,
		Extras: map[string]string{
			ExtraPayload: `{"id":5}`,
			"channel":    "promo",
			"id":         "shadowed",
		},
	}
	ev, _ := c.Classify(context.Background(), sig, true)

	obj := decodePayload(t, ev)
	if obj["channel"] != jsonval.String("promo") {
		t.Errorf("channel = %v, extras must fill absent keys", obj["channel"])
	}
	if obj["id"] != jsonval.Number(5) {
		t.Errorf("id = %v, payload keys must not be shadowed by extras", obj["id"])
	}
}

func TestClassify_RemotePayloadPreferredOverExtra(t *testing.T) {
	c := newTestClassifier(&fakePending{})

	sig := Signal{
		RemotePayload: `{"from":"remote"}`,
		Extras:        map[string]string{ExtraPayload: `{"from":"extra"}`},
	}
	ev, _ := c.Classify(context.Background(), sig, true)

	obj := decodePayload(t, ev)
	if obj["from"] != jsonval.String("remote") {
		t.Errorf("from = %v, remote payload takes precedence", obj["from"])
	}
}

func TestClassify_PendingSourceFailure(t *testing.T) {
	pending := &fakePending{err: errors.New("store gone")}
	c := newTestClassifier(pending)

	sig := Signal{Action: ActionNotificationTapped, Extras: map[string]string{ExtraPayload: `{"id":5}`}}
	ev, ok := c.Classify(context.Background(), sig, true)
	if !ok {
		t.Fatal("broken pending source suppressed the event")
	}
	if ev.Payload != `{"id":5}` {
		t.Errorf("Payload = %q, want delivered payload untouched", ev.Payload)
	}
}
