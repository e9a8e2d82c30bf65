package core

import (
	"fmt"
	"time"
)

// Session is the server-tracked identity scoping a sequence of turns for one
// (app, user) pair. A session is active iff ID is non-empty. Session values
// are replaced, never mutated, on lifecycle transitions.
type Session struct {
	ID             string         `json:"id"`
	AppName        string         `json:"appName"`
	UserID         string         `json:"userId"`
	LastUpdateTime float64        `json:"lastUpdateTime"`
	State          map[string]any `json:"state,omitempty"`
	Events         []Event        `json:"events,omitempty"`
}

// EmptySession is the "no session" sentinel.
var EmptySession = Session{}

type sessionFields Session

var sessionSchema = schemaOf[sessionFields]()

// UnmarshalJSON accepts camelCase and snake_case keys.
func (s *Session) UnmarshalJSON(data []byte) error {
	var f sessionFields
	if _, err := sessionSchema.decode(data, &f); err != nil {
		return err
	}
	*s = Session(f)
	return nil
}

// IsActive reports whether the session has a server assigned id.
func (s Session) IsActive() bool { return s.ID != "" }

// LastUpdate converts LastUpdateTime to a UTC time.Time.
func (s Session) LastUpdate() time.Time { return secondsToTime(s.LastUpdateTime) }

func (s Session) String() string {
	return fmt.Sprintf("Session(id:%s, app:%s, user:%s, last_update:%v)", s.ID, s.AppName, s.UserID, s.LastUpdateTime)
}
