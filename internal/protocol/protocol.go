// Package protocol defines the wire format spoken between a listener
// device and the processing node: one JSON header, binary PCM frames,
// a text sentinel, and exactly one JSON reply per utterance.
package protocol

import "strings"

// Header type accepted by the server.
const MessageTypeUtterance = "utterance"

// EndSentinel terminates the binary PCM stream for one utterance.
const EndSentinel = "__end__"

// Close codes distinguish the three fatal handshake failures.
const (
	CloseBadHeader   = 4000
	CloseAuthFailure = 4001
	CloseBadFormat   = 4002
)

// routePrefix marks an interpreter result that must be executed on the
// listener device rather than spoken by it.
const routePrefix = "route_client:"

// RouteClient is the value of Reply.Route for routed local actions.
const RouteClient = "client"

// Header opens a session. It is sent as a single text frame and
// validated once per connection.
type Header struct {
	Type       string `json:"type"`
	SampleRate int    `json:"sr"`
	Secret     string `json:"secret"`
	Host       string `json:"host"`
	Room       string `json:"room,omitempty"`
}

// Reply is the single response per utterance. Either Msg carries text
// to speak, or Route/Action/Query describe a local action for the
// listener to perform.
type Reply struct {
	Msg     string `json:"msg"`
	Heard   string `json:"heard"`
	Room    string `json:"room,omitempty"`
	SkipTTS bool   `json:"skip_tts"`
	Route   string `json:"route,omitempty"`
	Action  string `json:"action,omitempty"`
	Query   string `json:"query,omitempty"`
}

// Empty returns the reply for an utterance with no usable speech.
func Empty() Reply {
	return Reply{SkipTTS: true}
}

// Speak returns a reply carrying text for the listener to voice.
func Speak(msg, heard, room string) Reply {
	return Reply{Msg: msg, Heard: heard, Room: room}
}

// Routed returns a reply instructing the listener to run a local action.
func Routed(action, query, heard, room string) Reply {
	return Reply{
		Route:  RouteClient,
		Action: action,
		Query:  query,
		Heard:  heard,
		Room:   room,
	}
}

// RouteSentinel encodes a routed action as an interpreter result string.
func RouteSentinel(action, query string) string {
	if query == "" {
		return routePrefix + " " + action
	}
	return routePrefix + " " + action + "|" + query
}

// ParseRouted inspects an interpreter result for the routing sentinel
// prefix. It returns the action and optional query when present.
func ParseRouted(result string) (action, query string, ok bool) {
	if !strings.HasPrefix(strings.ToLower(result), routePrefix) {
		return "", "", false
	}
	rest := strings.TrimSpace(result[len(routePrefix):])
	if rest == "" {
		return "", "", false
	}
	if i := strings.Index(rest, "|"); i >= 0 {
		return strings.ToLower(strings.TrimSpace(rest[:i])), strings.TrimSpace(rest[i+1:]), true
	}
	return strings.ToLower(rest), "", true
}
