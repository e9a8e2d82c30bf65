package core

import "fmt"

// RunRequest is the body of a turn submission.
type RunRequest struct {
	AppName    string  `json:"appName"`
	UserID     string  `json:"userId"`
	SessionID  string  `json:"sessionId"`
	NewMessage Content `json:"newMessage"`
	Streaming  bool    `json:"streaming"`
}

// BuildRunRequest assembles a turn submission carrying userText as a single
// user text part. It is pure and fails with ErrInvalidSession when the
// session has no id.
func BuildRunRequest(s Session, userText string) (RunRequest, error) {
	return BuildRunRequestWithContent(s, NewUserContent(userText))
}

// BuildRunRequestWithContent is BuildRunRequest for arbitrary content, e.g.
// function responses fed back to the agent.
func BuildRunRequestWithContent(s Session, content Content) (RunRequest, error) {
	if !s.IsActive() {
		return RunRequest{}, ErrInvalidSession
	}
	return RunRequest{
		AppName:    s.AppName,
		UserID:     s.UserID,
		SessionID:  s.ID,
		NewMessage: content,
		Streaming:  false,
	}, nil
}

// Validate checks that all identity fields are set and streaming is off.
func (r RunRequest) Validate() error {
	if r.SessionID == "" {
		return ErrInvalidSession
	}
	if r.AppName == "" || r.UserID == "" {
		return fmt.Errorf("invalid run request: app name and user id are required (app=%q user=%q)", r.AppName, r.UserID)
	}
	if r.Streaming {
		return ErrStreamingUnsupported
	}
	return nil
}
