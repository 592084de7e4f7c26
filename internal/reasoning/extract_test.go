package reasoning

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "bare object",
			in:   `{"a":1}`,
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "fenced json block",
			in:   "```json\n{\"a\":1}\n```",
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "plain fence",
			in:   "```\n{\"a\":1}\n```",
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "leading and trailing prose",
			in:   "Sure, here is the result: {\"a\":1} Hope that helps!",
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "braces inside strings",
			in:   `{"code":"func f() { return \"}\" }","n":2}`,
			want: `{"code":"func f() { return \"}\" }","n":2}`,
			ok:   true,
		},
		{
			name: "nested objects",
			in:   `noise {"a":{"b":{"c":3}}} noise`,
			want: `{"a":{"b":{"c":3}}}`,
			ok:   true,
		},
		{
			name: "no object",
			in:   "the model refused to answer",
			ok:   false,
		},
		{
			name: "unbalanced",
			in:   `{"a":1`,
			ok:   false,
		},
		{
			name: "empty",
			in:   "",
			ok:   false,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(c.in)
			require.Equal(t, c.ok, ok)
			if c.ok {
				require.Equal(t, c.want, got)
			}
		})
	}
}
