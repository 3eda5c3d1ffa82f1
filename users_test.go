package starschema_test

import (
	"testing"

	"github.com/pilosa/starschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(user, level string, ts int64) starschema.ActivityRecord {
	return starschema.ActivityRecord{
		UserID:    user,
		FirstName: "First" + user,
		LastName:  "Last" + user,
		Gender:    "M",
		Level:     level,
		Page:      starschema.ListenPage,
		SessionID: 1,
		TS:        ts,
		HasTS:     true,
	}
}

func TestFilterListens(t *testing.T) {
	home := event("1", "free", 1)
	home.Page = "Home"
	anon := event("", "free", 2)
	logout := event("2", "paid", 3)
	logout.Page = "Logout"
	untimed := event("3", "paid", 0)
	untimed.HasTS = false

	listens, stats := starschema.FilterListens([]starschema.ActivityRecord{
		event("1", "free", 0), home, anon, logout, untimed, event("2", "paid", 4),
	})
	assert.Equal(t, starschema.FilterStats{Events: 6, NonListens: 2, NullUser: 1, NullTS: 1}, stats)
	assert.Equal(t, 2, stats.Listens())
	require.Len(t, listens, 2)
	assert.Equal(t, int64(0), listens[0].TS)
	assert.Equal(t, int64(4), listens[1].TS)
}

func TestExtractUsers(t *testing.T) {
	t.Run("latest level wins", func(t *testing.T) {
		users, stats := starschema.ExtractUsers([]starschema.ActivityRecord{
			event("U", "free", 100),
			event("U", "paid", 200),
		})
		require.Len(t, users, 1)
		assert.Equal(t, "paid", users[0].Level)
		assert.Equal(t, starschema.TableStats{Table: starschema.TableUsers, Input: 2, Duplicates: 1, Output: 1}, stats)
	})

	t.Run("out of order input", func(t *testing.T) {
		users, _ := starschema.ExtractUsers([]starschema.ActivityRecord{
			event("U", "paid", 200),
			event("U", "free", 100),
		})
		require.Len(t, users, 1)
		assert.Equal(t, "paid", users[0].Level)
	})

	t.Run("equal timestamps go to the later record", func(t *testing.T) {
		users, _ := starschema.ExtractUsers([]starschema.ActivityRecord{
			event("U", "free", 100),
			event("U", "paid", 100),
		})
		require.Len(t, users, 1)
		assert.Equal(t, "paid", users[0].Level)
	})

	t.Run("events without ts never beat a timed event", func(t *testing.T) {
		untimed := event("U", "free", 0)
		untimed.HasTS = false
		users, _ := starschema.ExtractUsers([]starschema.ActivityRecord{
			untimed,
			event("U", "paid", 100),
			untimed,
		})
		require.Len(t, users, 1)
		assert.Equal(t, "paid", users[0].Level)
	})

	t.Run("one row per user in first seen order", func(t *testing.T) {
		users, stats := starschema.ExtractUsers([]starschema.ActivityRecord{
			event("B", "free", 1),
			event("A", "free", 2),
			event("", "free", 3),
			event("B", "paid", 4),
		})
		assert.Equal(t, 1, stats.NullKey)
		require.Len(t, users, 2)
		assert.Equal(t, "B", users[0].UserID)
		assert.Equal(t, "paid", users[0].Level)
		assert.Equal(t, "FirstB", users[0].FirstName)
		assert.Equal(t, "A", users[1].UserID)
	})
}
