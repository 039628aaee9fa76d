package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	at := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	c := Fixed(at)
	assert.Equal(t, at, c.Now())
	assert.Equal(t, at, c.Now())
}

func TestSystemLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	assert.Equal(t, tokyo, System{Loc: tokyo}.Now().Location())
	assert.Equal(t, time.Local, System{}.Now().Location())
}
