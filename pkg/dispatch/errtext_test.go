package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorText(t *testing.T) {
	cases := []struct {
		name string
		err  error
		max  int
		want string
	}{
		{name: "nil", err: nil, max: 10, want: ""},
		{name: "fits", err: errors.New("hello"), max: 5, want: "hello"},
		{name: "clipped", err: errors.New("hello world"), max: 5, want: "hello…"},
		{name: "no rune split", err: errors.New("привет"), max: 3, want: "п…"},
		{name: "disabled", err: errors.New("boom"), max: 0, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, errorText(tc.err, tc.max))
		})
	}
}
