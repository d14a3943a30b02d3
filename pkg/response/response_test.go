package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Envelope(t *testing.T) {
	body, err := json.Marshal(Error("ATTEMPTS_EXCEEDED", "Maximum attempts exceeded for this activity"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"success": false,
		"error": {"code": "ATTEMPTS_EXCEEDED", "message": "Maximum attempts exceeded for this activity"},
		"errorMessage": "Maximum attempts exceeded for this activity"
	}`, string(body))
}

func TestHelpers_Codes(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", BadRequest("x").Error.Code)
	assert.Equal(t, "NOT_FOUND", NotFound("x").Error.Code)
	assert.Equal(t, "INTERNAL_ERROR", InternalError("x").Error.Code)
	assert.Equal(t, "x", NotFound("x").ErrorMessage)
}
