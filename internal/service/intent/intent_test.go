package intent

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		body string
		want Intent
	}{
		{"Please unsubscribe me, but maybe call later", Unsubscribe},
		{"Sounds good, let's schedule a call", MeetingRequest},
		{"How much does this cost?", Question},
		{"Not interested, thanks", NotInterested},
		{"Sure, happy to hear more. Yes!", Interested},
		{"I am out of office until Monday", OutOfOffice},
		{"", Neutral},
		{"Thanks for reaching out.", Neutral},
		{"REMOVE me from your list", Unsubscribe},
		{"What is the pricing model", Question},
	}

	for _, tc := range cases {
		if got := Classify(tc.body); got != tc.want {
			t.Fatalf("Classify(%q)=%s, want %s", tc.body, got, tc.want)
		}
	}
}

func TestClassify_UnsubscribeOutranksEverything(t *testing.T) {
	bodies := []string{
		"I'm interested but please stop emailing me",
		"Can you unsubscribe me? Happy to book a call otherwise",
		"no thanks, remove me",
		"schedule nothing and don't email again",
	}
	for _, body := range bodies {
		if got := Classify(body); got != Unsubscribe {
			t.Fatalf("Classify(%q)=%s, want %s", body, got, Unsubscribe)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	body := "Sounds good, tell me more about pricing?"
	first := Classify(body)
	for i := 0; i < 10; i++ {
		if got := Classify(body); got != first {
			t.Fatalf("classification not stable: %s then %s", first, got)
		}
	}
}

func TestTriggersMeeting(t *testing.T) {
	if !Interested.TriggersMeeting() || !Question.TriggersMeeting() {
		t.Fatalf("interested and question must trigger the meeting flow")
	}
	for _, label := range []Intent{Unsubscribe, NotInterested, MeetingRequest, OutOfOffice, Neutral} {
		if label.TriggersMeeting() {
			t.Fatalf("%s must not trigger the meeting flow", label)
		}
	}
}
