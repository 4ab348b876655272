// Package intent classifies the purpose of an inbound reply from its
// plain-text body. Classification is pure and deterministic: the same input
// always yields the same label.
package intent

import "strings"

// Intent is the classifier's output category.
type Intent string

// Known intents, listed from highest to lowest matching priority.
const (
	Unsubscribe    Intent = "unsubscribe"
	NotInterested  Intent = "not_interested"
	MeetingRequest Intent = "meeting_request"
	Question       Intent = "question"
	Interested     Intent = "interested"
	OutOfOffice    Intent = "out_of_office"
	Neutral        Intent = "neutral"
)

// Categories are evaluated in a fixed priority order because replies often
// contain keywords from several of them: an opt-out mentioning "call me
// before you stop" must still classify as unsubscribe, and a positive reply
// proposing a call must win over plain interest.
var rules = []struct {
	label    Intent
	keywords []string
}{
	{Unsubscribe, []string{"unsubscribe", "remove", "stop", "don't email"}},
	{NotInterested, []string{"not interested", "no thanks", "pass", "don't have budget"}},
	{MeetingRequest, []string{"book", "calendar", "schedule", "meet", "call"}},
	{Question, []string{"?", "how much", "pricing", "what is", "can you"}},
	{Interested, []string{"interested", "sounds good", "tell me more", "yes"}},
	{OutOfOffice, []string{"out of office", "ooo", "on vacation", "away until"}},
}

// Classify assigns exactly one intent to the reply body. The first category
// containing a matching keyword wins; lower-priority matches are ignored.
// An empty or unrecognized body is Neutral.
func Classify(body string) Intent {
	lower := strings.ToLower(body)
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.label
			}
		}
	}
	return Neutral
}

// TriggersMeeting reports whether the intent should start the meeting
// suggestion flow.
func (i Intent) TriggersMeeting() bool {
	return i == Interested || i == Question
}
