package internal

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLogLevel(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	cases := map[string]log.Level{
		"DEBUG":   log.DebugLevel,
		"WARN":    log.WarnLevel,
		"ERROR":   log.ErrorLevel,
		"":        log.InfoLevel,
		"verbose": log.InfoLevel,
	}
	for input, expected := range cases {
		SetLogLevel(input)
		assert.Equal(t, expected, log.GetLevel(), "level for %q", input)
	}
}
