package linkedin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const trackedLink = "https://www.linkedin.com/comm/jobs/view/3980342987/?trackingId=rDK7yNnYfQGa6%2FjS1%2FuFxA%3D%3D&refId=ByteString%28length%3D16%2Cbytes%3Deeeb2cb4...d51b6cfd%29&lipi=urn%3Ali%3Apage%3Aemail_email_job_alert_digest_01%3BddCXLj%2FtQPScONCjKXfx3A%3D%3D&midToken=AQFeW4mjPLPhqw&midSig=1IX3ke7txRSbk1&trk=eml-email_job_alert_digest_01-job_card-0-view_job"

func TestChompLink(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank", "   ", "   "},
		{"tracking query stripped", trackedLink, "https://www.linkedin.com/comm/jobs/view/3980342987"},
		{"other query kept", "https://www.linkedin.com/comm/jobs/view/3980342987/?hello=world", "https://www.linkedin.com/comm/jobs/view/3980342987/?hello=world"},
		{"first marker wins", "a/?trackingIdb/?trackingIdc", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChompLink(tt.in))
		})
	}
}

func TestChompLinkIdempotent(t *testing.T) {
	once := ChompLink(trackedLink)
	assert.Equal(t, once, ChompLink(once))
}
