package engine

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildUnsubscribeLink returns the opt-out URL for a recipient,
// pointing at the public unsubscribe endpoint.
func BuildUnsubscribeLink(baseURL string, recipientID uint) string {
	params := url.Values{}
	params.Set("rid", fmt.Sprintf("%d", recipientID))
	return strings.TrimRight(baseURL, "/") + "/unsubscribe?" + params.Encode()
}

// AppendComplianceFooter appends the mandatory disclosure footer to a
// message body. Every outgoing message gets one, no exceptions.
func AppendComplianceFooter(body, senderIdentity, unsubLink string) string {
	footer := fmt.Sprintf(
		"\n\n—\nYou are receiving this because we thought it might be relevant.\nSender: %s\nUnsubscribe: %s",
		senderIdentity, unsubLink,
	)
	return strings.TrimRight(body, " \t\r\n") + footer
}
