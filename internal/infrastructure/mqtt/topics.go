package mqtt

import "strings"

// MQTT topic wildcards.
const (
	// WildcardSingle matches exactly one topic level.
	WildcardSingle = "+"

	// WildcardMulti matches any number of trailing levels.
	WildcardMulti = "#"
)

// FromAnySender returns the filter matching typeAlias from every sender
// on the flat "{sender}/{type}" scheme.
//
// Example: +/gt.telemetry.110
func FromAnySender(typeAlias string) string {
	return WildcardSingle + "/" + typeAlias
}

// validPublishTopic reports whether topic can be published to:
// non-empty and free of wildcards.
func validPublishTopic(topic string) bool {
	return topic != "" && !strings.ContainsAny(topic, WildcardSingle+WildcardMulti)
}

// validFilter reports whether filter is a well-formed subscription filter:
// '+' occupies a whole level and '#' only the whole last level.
func validFilter(filter string) bool {
	if filter == "" {
		return false
	}
	levels := strings.Split(filter, "/")
	for i, level := range levels {
		if strings.Contains(level, WildcardMulti) && (level != WildcardMulti || i != len(levels)-1) {
			return false
		}
		if strings.Contains(level, WildcardSingle) && level != WildcardSingle {
			return false
		}
	}
	return true
}
