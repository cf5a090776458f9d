package natsadapter

import "strings"

const (
	streamRequests = "EXPORT_REQUESTS"
	streamEvents   = "EXPORT_EVENTS"

	SubjectExportRequested = "geoexport.exports.requested"
	subjectCompletedPrefix = "geoexport.exports.completed."
	subjectFailedPrefix    = "geoexport.exports.failed."

	// SubjectExportEvents matches completion and failure events for every
	// client.
	SubjectExportEvents = "geoexport.exports.*.*"
)

// ClientToken turns a client id into a single subject token.
func ClientToken(clientID string) string {
	if clientID == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, clientID)
}

// CompletedSubject is the subject an export completion for clientID is
// published on.
func CompletedSubject(clientID string) string {
	return subjectCompletedPrefix + ClientToken(clientID)
}

// FailedSubject is the subject an export failure for clientID is published on.
func FailedSubject(clientID string) string {
	return subjectFailedPrefix + ClientToken(clientID)
}

// ClientEventsSubject matches completion and failure events for one client.
func ClientEventsSubject(clientID string) string {
	return "geoexport.exports.*." + ClientToken(clientID)
}
