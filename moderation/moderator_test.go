package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newModerator(t *testing.T, blacklist ...string) *Moderator {
	t.Helper()
	m, err := NewModerator(blacklist, '*')
	require.NoError(t, err)
	return m
}

func TestCensor_Masks_Blacklisted_Words(t *testing.T) {
	req := require.New(t)
	m := newModerator(t, "heck", "dang")

	req.Equal("what the ****", m.Censor("what the heck"))
	req.Equal("**** it all", m.Censor("dang it all"))
	req.Equal("nothing to hide", m.Censor("nothing to hide"))
}

func TestCensor_Is_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	m := newModerator(t, "heck")

	req.Equal("what the ****", m.Censor("what the HECK"))
	req.Equal("what the ****", m.Censor("what the HeCk"))
}

func TestCensor_Defeats_Leet_Speak(t *testing.T) {
	req := require.New(t)
	m := newModerator(t, "heck")

	// 3 -> e, preserving the original characters' positions
	req.Equal("what the ****", m.Censor("what the h3ck"))
}

func TestCensor_Ignores_Punctuation_Inside_Words(t *testing.T) {
	req := require.New(t)
	m := newModerator(t, "heck")

	// Separators inside the word are masked along with it
	req.Equal("what the ******", m.Censor("what the h.e.ck"))
}

func TestCensor_Preserves_Surrounding_Text(t *testing.T) {
	req := require.New(t)
	m := newModerator(t, "heck")

	req.Equal("****, that was close!", m.Censor("heck, that was close!"))
}

func TestLoadWordlists_Embedded(t *testing.T) {
	req := require.New(t)

	words, err := LoadWordlists()

	req.NoError(err)
	req.NotEmpty(words)
	req.Contains(words, "heck")
}
