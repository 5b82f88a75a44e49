package kafka

import "strings"

// TopicPrefix namespaces every topic this module publishes to.
const TopicPrefix = "cinema"

// TopicLibraryToggled carries favorite and watch-later toggles.
var TopicLibraryToggled = Topic("library", "toggled")

// Topic joins the prefix with the given segments, e.g. cinema.library.toggled.
func Topic(parts ...string) string {
	return TopicPrefix + "." + strings.Join(parts, ".")
}
