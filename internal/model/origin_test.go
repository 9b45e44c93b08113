package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://acme.com/about?x=1", "https://acme.com"},
		{"HTTP://WWW.Acme.com:8080/", "http://www.acme.com"},
		{"  https://shop.example  ", "https://shop.example"},
	}
	for _, tt := range tests {
		got, err := Origin(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestOrigin_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "not a url", "/relative/path", "://broken"} {
		_, err := Origin(in)
		assert.Error(t, err, in)
	}
}

func TestIsHTTP(t *testing.T) {
	t.Parallel()

	assert.True(t, IsHTTP("https://acme.com"))
	assert.True(t, IsHTTP("http://acme.com/x"))
	assert.False(t, IsHTTP("chrome://extensions"))
	assert.False(t, IsHTTP("file:///tmp/a.html"))
	assert.False(t, IsHTTP("about:blank"))
	assert.False(t, IsHTTP(""))
}

func TestIsRootPath(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRootPath("https://acme.com"))
	assert.True(t, IsRootPath("https://acme.com/"))
	assert.True(t, IsRootPath("https://acme.com/index.html"))
	assert.True(t, IsRootPath("https://acme.com/?utm=1"))
	assert.False(t, IsRootPath("https://acme.com/about"))
	assert.False(t, IsRootPath("https://acme.com/index.htm"))
}

func TestLeadSocial(t *testing.T) {
	t.Parallel()

	l := Lead{
		Facebook:  "https://facebook.com/acme/",
		Instagram: "https://instagram.com/acme/",
		Twitter:   "https://x.com/acme",
		LinkedIn:  "https://linkedin.com/company/acme",
		YouTube:   "https://youtube.com/@acme",
	}
	got := make([]string, 0, len(AllNetworks()))
	for _, n := range AllNetworks() {
		got = append(got, l.Social(n))
	}
	assert.Equal(t, []string{l.Facebook, l.Instagram, l.Twitter, l.LinkedIn, l.YouTube}, got)
	assert.Empty(t, l.Social(Network("myspace")))
}
