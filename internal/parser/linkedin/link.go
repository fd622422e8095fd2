package linkedin

import "strings"

// trackingMarker starts the tracking query LinkedIn appends to job links.
const trackingMarker = "/?trackingId"

// ChompLink strips the tracking query from a job link. Links without the
// marker come back unchanged.
func ChompLink(link string) string {
	if link == "" {
		return link
	}
	if i := strings.Index(link, trackingMarker); i != -1 {
		return link[:i]
	}
	return link
}
