package testutil

import (
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dcl10/WfExS-backend/internal/utils"
)

// NewTestLogger creates a quiet logger tagged with the test name
func NewTestLogger(t *testing.T) *utils.Logger {
	t.Helper()

	zlogger := zerolog.New(io.Discard).With().
		Timestamp().
		Str("test", t.Name()).
		Logger()

	return &utils.Logger{Logger: zlogger}
}
