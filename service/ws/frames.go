package ws

import (
	"encoding/json"

	"github.com/anandbobba/Innovex-Service/tools/errs"
)

// Server-published lifecycle events.
const (
	EventRequestCreated        = "request:created"
	EventRequestCreatedForSpoc = "request:created:forSpoc"
	EventRequestCreatedForTeam = "request:created:forTeam"
	EventRequestUpdated        = "request:updated"
	EventRequestDeleted        = "request:deleted"
)

// Client-emitted room signals.
const (
	EventSpocJoin  = "spoc:join"
	EventSpocLeave = "spoc:leave"
	EventTeamJoin  = "team:join"
	EventTeamLeave = "team:leave"
)

func RoomTeam(teamID string) string { return "team:" + teamID }
func RoomSpoc(spocID string) string { return "spoc:" + spocID }

// Frame is the wire format in both directions: an event name plus an opaque
// JSON payload. Room signals carry a bare string id as data.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errs.WrapMsg(err, "parse frame")
	}
	if f.Event == "" {
		return nil, errs.New("frame missing event")
	}
	return &f, nil
}

func EncodeFrame(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.WrapMsg(err, "encode frame payload event=%s", event)
	}
	return json.Marshal(&Frame{Event: event, Data: data})
}

// roomID decodes the data of a join/leave signal. Accepts both a JSON string
// and a raw unquoted id.
func roomID(data json.RawMessage) string {
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return string(data)
	}
	return id
}
