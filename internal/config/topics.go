// internal/config/topics.go
//
// Pub/sub topic derivation.
//
// Context
// -------
// Topic names are never configured directly.  Build recomputes them from
// PUBSUB_TOPIC_PREFIX and ENVIRONMENT every time, so the two can never
// disagree:
//
//	formio-form-events-prod
//	formio-form-submissions-prod
//	formio-form-updates-prod
//	formio-webhook-events-prod
package config

// channels maps topic keys to the channel segment of the topic name.
var channels = []struct{ key, segment string }{
	{"formEvents", "form-events"},
	{"formSubmissions", "form-submissions"},
	{"formUpdates", "form-updates"},
	{"webhookEvents", "webhook-events"},
}

// deriveTopics applies the fixed naming rule {prefix}-{channel}-{stage}.
func deriveTopics(prefix, stage string) map[string]string {
	out := make(map[string]string, len(channels))
	for _, ch := range channels {
		out[ch.key] = prefix + "-" + ch.segment + "-" + stage
	}
	return out
}
