package event

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// wireEvent is the persisted shape: the payload fields are flattened into
// the data object next to the injected timestamp and url.
type wireEvent struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId"`
	Name      Name            `json:"name"`
	Data      json.RawMessage `json:"data"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	data := map[string]any{}
	switch p := e.Data.Payload.(type) {
	case nil:
	case Custom:
		for k, v := range p.Fields {
			data[k] = v
		}
	default:
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, errors.Wrapf(err, "marshal %s payload", e.Name)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, errors.Wrapf(err, "flatten %s payload", e.Name)
		}
	}
	data["timestamp"] = e.Data.Timestamp
	data["url"] = e.Data.URL

	rawData, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "marshal event data")
	}
	return json.Marshal(wireEvent{
		ID:        e.ID,
		SessionID: e.SessionID,
		Name:      e.Name,
		Data:      rawData,
	})
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var w wireEvent
	if err := json.Unmarshal(b, &w); err != nil {
		return errors.Wrap(err, "unmarshal event")
	}
	e.ID = w.ID
	e.SessionID = w.SessionID
	e.Name = w.Name

	fields := map[string]any{}
	if len(w.Data) > 0 {
		if err := json.Unmarshal(w.Data, &fields); err != nil {
			return errors.Wrapf(err, "unmarshal %s data", w.Name)
		}
	}
	if ts, ok := fields["timestamp"].(float64); ok {
		e.Data.Timestamp = int64(ts)
	}
	if url, ok := fields["url"].(string); ok {
		e.Data.URL = url
	}

	payload, err := decodePayload(w.Name, w.Data, fields)
	if err != nil {
		return err
	}
	e.Data.Payload = payload
	return nil
}

func decodePayload(name Name, raw json.RawMessage, fields map[string]any) (Payload, error) {
	unmarshal := func(p Payload) (Payload, error) {
		if len(raw) == 0 {
			return p, nil
		}
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, errors.Wrapf(err, "unmarshal %s payload", name)
		}
		return p, nil
	}

	switch name {
	case NamePageView:
		p, err := unmarshal(&PageView{})
		return deref(p), err
	case NameLinkClick:
		p, err := unmarshal(&LinkClick{})
		return deref(p), err
	case NameThemeChange:
		p, err := unmarshal(&ThemeChange{})
		return deref(p), err
	case NamePerformance:
		p, err := unmarshal(&Performance{})
		return deref(p), err
	case NameSessionEnd:
		p, err := unmarshal(&SessionEnd{})
		return deref(p), err
	case NamePageHidden:
		p, err := unmarshal(&PageHidden{})
		return deref(p), err
	case NamePageVisible:
		p, err := unmarshal(&PageVisible{})
		return deref(p), err
	case NameError:
		p, err := unmarshal(&ErrorEvent{})
		return deref(p), err
	default:
		extra := make(map[string]any, len(fields))
		for k, v := range fields {
			if k == "timestamp" || k == "url" {
				continue
			}
			extra[k] = v
		}
		return Custom{Kind: name, Fields: extra}, nil
	}
}

// deref unwraps the pointer the decoder needed so payloads stay value types.
func deref(p Payload) Payload {
	switch v := p.(type) {
	case *PageView:
		return *v
	case *LinkClick:
		return *v
	case *ThemeChange:
		return *v
	case *Performance:
		return *v
	case *SessionEnd:
		return *v
	case *PageHidden:
		return *v
	case *PageVisible:
		return *v
	case *ErrorEvent:
		return *v
	default:
		return p
	}
}

// PayloadFromMap builds the typed payload for a name from loose fields, as
// delivered by the ingest endpoint. Unknown names become Custom payloads.
func PayloadFromMap(name Name, fields map[string]any) (Payload, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s fields", name)
	}
	return decodePayload(name, raw, fields)
}

// EncodeLog serializes an ordered event sequence for the persisted store.
func EncodeLog(events []Event) ([]byte, error) {
	if events == nil {
		events = []Event{}
	}
	b, err := json.Marshal(events)
	if err != nil {
		return nil, errors.Wrap(err, "encode event log")
	}
	return b, nil
}

// DecodeLog parses a persisted event sequence. Callers treat an error as
// corruption, not a fatal condition.
func DecodeLog(b []byte) ([]Event, error) {
	var events []Event
	if err := json.Unmarshal(b, &events); err != nil {
		return nil, errors.Wrap(err, "decode event log")
	}
	return events, nil
}
