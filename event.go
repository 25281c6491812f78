package s3component

import (
	"encoding/json"
	"fmt"
)

// EventKind identifies which collector entry point received an event.
type EventKind string

const (
	KindPage  EventKind = "page"
	KindTrack EventKind = "track"
	KindUser  EventKind = "user"
)

func (k EventKind) IsValid() bool {
	switch k {
	case KindPage, KindTrack, KindUser:
		return true
	default:
		return false
	}
}

func (k EventKind) String() string {
	return string(k)
}

// ParseEventKind validates s as an event kind.
func ParseEventKind(s string) (EventKind, error) {
	k := EventKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid event kind %q: must be one of page, track, user: %w", s, ErrInvalidInput)
	}
	return k, nil
}

// Consent is the visitor's consent state.
type Consent string

const (
	ConsentPending Consent = "pending"
	ConsentGranted Consent = "granted"
	ConsentDenied  Consent = "denied"
)

// Dict is an ordered list of string pairs. It encodes as a JSON array of
// two-element arrays so key order survives a round trip.
type Dict [][2]string

// Get returns the first value for key.
func (d Dict) Get(key string) (string, bool) {
	for _, kv := range d {
		if kv[0] == key {
			return kv[1], true
		}
	}
	return "", false
}

// Map flattens d. Later duplicates win.
func (d Dict) Map() map[string]string {
	m := make(map[string]string, len(d))
	for _, kv := range d {
		m[kv[0]] = kv[1]
	}
	return m
}

// Event is a data-collection event as delivered by the host.
type Event struct {
	UUID            string    `json:"uuid"`
	Timestamp       int64     `json:"timestamp"`
	TimestampMillis int64     `json:"timestamp_millis"`
	TimestampMicros int64     `json:"timestamp_micros"`
	EventType       EventKind `json:"event_type"`
	Data            EventData `json:"data"`
	Context         Context   `json:"context"`
	Consent         *Consent  `json:"consent,omitempty"`
}

// EventData carries exactly one of Page, Track or User.
type EventData struct {
	Page  *PageData  `json:"page,omitempty"`
	Track *TrackData `json:"track,omitempty"`
	User  *UserData  `json:"user,omitempty"`
}

// Kind reports which payload is set, or "" if none is.
func (d EventData) Kind() EventKind {
	switch {
	case d.Page != nil:
		return KindPage
	case d.Track != nil:
		return KindTrack
	case d.User != nil:
		return KindUser
	default:
		return ""
	}
}

type PageData struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Keywords   []string `json:"keywords"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Path       string   `json:"path"`
	Search     string   `json:"search"`
	Referrer   string   `json:"referrer"`
	Properties Dict     `json:"properties"`
}

type TrackData struct {
	Name       string `json:"name"`
	Products   []Dict `json:"products"`
	Properties Dict   `json:"properties"`
}

type UserData struct {
	UserID      string `json:"user_id"`
	AnonymousID string `json:"anonymous_id"`
	EdgeeID     string `json:"edgee_id"`
	Properties  Dict   `json:"properties"`
}

type Context struct {
	Page     PageData `json:"page"`
	User     UserData `json:"user"`
	Client   Client   `json:"client"`
	Campaign Campaign `json:"campaign"`
	Session  Session  `json:"session"`
}

type Client struct {
	City                     string  `json:"city"`
	IP                       string  `json:"ip"`
	Locale                   string  `json:"locale"`
	Timezone                 string  `json:"timezone"`
	UserAgent                string  `json:"user_agent"`
	UserAgentArchitecture    string  `json:"user_agent_architecture"`
	UserAgentBitness         string  `json:"user_agent_bitness"`
	UserAgentFullVersionList string  `json:"user_agent_full_version_list"`
	UserAgentVersionList     string  `json:"user_agent_version_list"`
	UserAgentMobile          string  `json:"user_agent_mobile"`
	UserAgentModel           string  `json:"user_agent_model"`
	OSName                   string  `json:"os_name"`
	OSVersion                string  `json:"os_version"`
	ScreenWidth              int32   `json:"screen_width"`
	ScreenHeight             int32   `json:"screen_height"`
	ScreenDensity            float32 `json:"screen_density"`
	Continent                string  `json:"continent"`
	CountryCode              string  `json:"country_code"`
	CountryName              string  `json:"country_name"`
	Region                   string  `json:"region"`
}

type Campaign struct {
	Name            string `json:"name"`
	Source          string `json:"source"`
	Medium          string `json:"medium"`
	Term            string `json:"term"`
	Content         string `json:"content"`
	CreativeFormat  string `json:"creative_format"`
	MarketingTactic string `json:"marketing_tactic"`
}

type Session struct {
	SessionID         string `json:"session_id"`
	PreviousSessionID string `json:"previous_session_id"`
	SessionCount      uint32 `json:"session_count"`
	SessionStart      bool   `json:"session_start"`
	FirstSeen         int64  `json:"first_seen"`
	LastSeen          int64  `json:"last_seen"`
}

// EventEncoder serializes an event into the object body.
type EventEncoder func(Event) ([]byte, error)

// JSONEncoder is the default EventEncoder.
func JSONEncoder(e Event) ([]byte, error) {
	return json.Marshal(e)
}
