package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pathakanu/chatmemo/internal/clock"
)

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	now := clock.Normalize(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	message := "  Let's meet tomorrow \n"

	req := BuildRequest(now, message)

	assert.Equal(t, message, req.User)
	assert.Contains(t, req.System, "Today is 2024-03-10 and the current time is 14:00")
	for _, field := range []string{`"important"`, `"datetime"`, `"message"`} {
		assert.Contains(t, req.System, field)
	}
	assert.Contains(t, req.System, "09:00")
	assert.Equal(t, req, BuildRequest(now, message))
}
