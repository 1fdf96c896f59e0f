package services

import (
	"fmt"
	"log/slog"

	"github.com/clubarena/championship-system/notifications"
)

type Event string

const (
	EventMatchScheduled       Event = "match_scheduled"
	EventResultConfirmed      Event = "result_confirmed"
	EventDisputeOpened        Event = "dispute_opened"
	EventStageAdvanced        Event = "stage_advanced"
	EventChampionshipFinished Event = "championship_finished"
)

// Notifier emits engine events. Delivery is fire-and-forget: failures are
// logged and never roll back the state transition that produced the event.
type Notifier interface {
	Notify(championshipID int, event Event, payload interface{})
}

// ChampionshipRoom is the websocket room name for a championship.
func ChampionshipRoom(championshipID int) string {
	return fmt.Sprintf("championship_%d", championshipID)
}

type hubNotifier struct {
	hub    *notifications.Hub
	logger *slog.Logger
}

func NewHubNotifier(hub *notifications.Hub, logger *slog.Logger) Notifier {
	return &hubNotifier{hub: hub, logger: logger}
}

func (n *hubNotifier) Notify(championshipID int, event Event, payload interface{}) {
	room := ChampionshipRoom(championshipID)
	n.logger.Debug("dispatching event",
		slog.String("event", string(event)), slog.String("room", room))
	n.hub.BroadcastToRoom(room, notifications.Envelope{
		Type:    string(event),
		Payload: payload,
		RoomID:  room,
	})
}

// NopNotifier discards events; used where no hub is wired.
type NopNotifier struct{}

func (NopNotifier) Notify(int, Event, interface{}) {}
