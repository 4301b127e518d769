package forum

import (
	"testing"

	"parley/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModesDefaultViewing(t *testing.T) {
	t.Parallel()

	m := NewModes()
	assert.Equal(t, ModeViewing, m.Mode(1))
}

func TestModesMutualExclusion(t *testing.T) {
	t.Parallel()

	m := NewModes()
	m.StartEditing(1)
	assert.Equal(t, ModeEditing, m.Mode(1))

	// Starting a reply cancels the edit; a comment is never in both.
	m.StartReplying(1)
	assert.Equal(t, ModeReplying, m.Mode(1))

	m.StartEditing(1)
	assert.Equal(t, ModeEditing, m.Mode(1))
}

func TestModesCancel(t *testing.T) {
	t.Parallel()

	m := NewModes()
	m.StartReplying(1)
	m.Cancel(1)
	assert.Equal(t, ModeViewing, m.Mode(1))
}

func TestModesIndependentPerComment(t *testing.T) {
	t.Parallel()

	m := NewModes()
	m.StartEditing(1)
	m.StartReplying(2)

	assert.Equal(t, ModeEditing, m.Mode(1))
	assert.Equal(t, ModeReplying, m.Mode(2))
	assert.Equal(t, ModeViewing, m.Mode(3))
}

func TestModesSubmitGuard(t *testing.T) {
	t.Parallel()

	t.Run("second submission is refused while one is pending", func(t *testing.T) {
		t.Parallel()
		m := NewModes()
		m.StartReplying(1)

		require.NoError(t, m.BeginSubmit(1))
		err := m.BeginSubmit(1)
		require.Error(t, err)
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("success returns the comment to viewing", func(t *testing.T) {
		t.Parallel()
		m := NewModes()
		m.StartEditing(1)

		require.NoError(t, m.BeginSubmit(1))
		m.EndSubmit(1, true)

		assert.Equal(t, ModeViewing, m.Mode(1))
		assert.NoError(t, m.BeginSubmit(1), "flag is cleared either way")
	})

	t.Run("failure keeps the mode for a retry", func(t *testing.T) {
		t.Parallel()
		m := NewModes()
		m.StartEditing(1)

		require.NoError(t, m.BeginSubmit(1))
		m.EndSubmit(1, false)

		assert.Equal(t, ModeEditing, m.Mode(1))
		assert.NoError(t, m.BeginSubmit(1))
	})
}

func TestModeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "viewing", ModeViewing.String())
	assert.Equal(t, "editing", ModeEditing.String())
	assert.Equal(t, "replying", ModeReplying.String())
}
