package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrub(t *testing.T) {
	cases := map[string]string{
		"mail me at jane.doe@acme.io today":           "mail me at [email] today",
		"call +1 (415) 555-0134 now":                  "call [phone] now",
		"read https://acme.io/blog?id=1 first":        "read [link] first",
		"see www.acme.io/about":                       "see [link]",
		"we grew 3x in 2024":                          "we grew 3x in 2024",
		"link https://x.io/u@y.com then bob@site.org": "link [link] then [email]",
		"office +44 20 7946 0958 or 415.555.0134":     "office [phone] or [phone]",
		"call (415) 555-0134 now":                     "call [phone] now",
	}

	for in, want := range cases {
		assert.Equal(t, want, Scrub(in), in)
	}
}

func TestScrubKeepsDatesAndFigures(t *testing.T) {
	for _, in := range []string{
		"On 2024-01-15 I quit my job.",
		"From 2019 - 2024 we grew revenue.",
		"We hit 1.000.000 users.",
		"Revenue reached 1,250,000 in Q3 2023.",
		"Up +20% since 12.05.2023",
		"Our 2023-2024 plan has 10 000 000 steps",
	} {
		assert.Equal(t, in, Scrub(in), in)
	}
}
