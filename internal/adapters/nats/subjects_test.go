package natsadapter

import "testing"

func TestClientToken(t *testing.T) {
	tests := map[string]string{
		"client-1":   "client-1",
		"acme.corp":  "acme_corp",
		"a*b>c":      "a_b_c",
		"with space": "with_space",
		"":           "_",
	}
	for in, want := range tests {
		if got := ClientToken(in); got != want {
			t.Errorf("ClientToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEventSubjects(t *testing.T) {
	if got := CompletedSubject("acme.corp"); got != "geoexport.exports.completed.acme_corp" {
		t.Errorf("CompletedSubject = %q", got)
	}
	if got := FailedSubject("c1"); got != "geoexport.exports.failed.c1" {
		t.Errorf("FailedSubject = %q", got)
	}
	if got := ClientEventsSubject("c1"); got != "geoexport.exports.*.c1" {
		t.Errorf("ClientEventsSubject = %q", got)
	}
}
