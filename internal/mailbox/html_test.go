package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFromHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "blocks and breaks become lines",
			in:   `<html><head><title>t</title><style>.a{color:red}</style></head><body><p>Senior Engineer</p><p>Acme<br>London</p><div>View job: https://x</div></body></html>`,
			want: "Senior Engineer\nAcme\nLondon\nView job: https://x",
		},
		{
			name: "blank runs collapse to one",
			in:   `<p>a</p><p></p><p></p><p>b</p>`,
			want: "a\n\nb",
		},
		{
			name: "whitespace collapsed",
			in:   "<p>  Senior \t  Engineer&nbsp;&nbsp;II </p>",
			want: "Senior Engineer II",
		},
		{
			name: "scripts dropped",
			in:   `<body><script>var x = 1;</script><p>kept</p></body>`,
			want: "kept",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TextFromHTML(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
