package harness

import (
	"testing"

	"github.com/tapwake/tapwake/internal/scenario"
)

func notificationStep(payload string) scenario.Step {
	return scenario.Step{Signal: &scenario.SignalSpec{
		Action: "NOTIFICATION_TAPPED",
		Extras: map[string]string{"payload": payload},
	}}
}

func TestScenario_ColdNotificationPull(t *testing.T) {
	RunWithGolden(t, scenario.Scenario{
		Name:        "cold_notification_pull",
		Description: "a tap before gate expiry is pulled exactly once",
		Steps: []scenario.Step{
			notificationStep(`{"id":5}`),
			{Consume: true},
			{Consume: true},
		},
	})
}

func TestScenario_LiveNotificationPush(t *testing.T) {
	RunWithGolden(t, scenario.Scenario{
		Name:        "live_notification_push",
		Description: "a tap after gate expiry is pushed and leaves no durable flag",
		Steps: []scenario.Step{
			{Subscribe: true},
			{TripGate: true},
			notificationStep(`{"n":2}`),
			{Consume: true},
		},
	})
}

func TestScenario_ColdDeepLink(t *testing.T) {
	RunWithGolden(t, scenario.Scenario{
		Name:        "cold_deep_link",
		Description: "a cold-launch URL is pulled exactly once",
		Steps: []scenario.Step{
			{Signal: &scenario.SignalSpec{URL: "myapp://product/123?ref=mail"}},
			{ConsumeLink: true},
			{ConsumeLink: true},
		},
	})
}

func TestScenario_PendingPayloadMerge(t *testing.T) {
	RunWithGolden(t, scenario.Scenario{
		Name:        "pending_payload_merge",
		Description: "pre-registered keys survive unless the fresh payload overrides them",
		Steps: []scenario.Step{
			{StorePending: `{"campaign":"x","id":1}`},
			notificationStep(`{"id":5}`),
			{Consume: true},
		},
	})
}

func TestRun_LivePushIsNotPersisted(t *testing.T) {
	res := Run(t, scenario.Scenario{
		Name: "live_then_pull",
		Steps: []scenario.Step{
			{Subscribe: true, TripGate: true},
			notificationStep(`{"x":1}`),
			{Consume: true},
		},
	})

	var pushes, pulls int
	for _, ev := range res.Trace {
		switch ev.Type {
		case scenario.TracePush:
			pushes++
		case scenario.TracePull:
			pulls++
			if ev.FromNotification {
				t.Error("live event leaked into the pull slot")
			}
		}
	}
	if pushes != 1 {
		t.Errorf("pushes = %d, want exactly 1", pushes)
	}
	if pulls != 1 {
		t.Errorf("pulls = %d, want 1", pulls)
	}
}
