package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_BackfillsMissingCollections(t *testing.T) {
	doc := &Document{
		Users:    []User{{ID: "u1", Username: "alice"}},
		Contests: []Contest{{ID: "c1", OwnerUserID: "u1"}},
		Rooms: []Room{{
			ID:               "r1",
			ProgressByUserID: map[string]Progress{"u1": {}},
		}},
	}
	doc.Normalize()

	assert.NotNil(t, doc.RoomMessages)
	assert.NotNil(t, doc.Activities)
	assert.NotNil(t, doc.Users[0].Stats.Achievements)
	assert.NotNil(t, doc.Contests[0].Problems)
	assert.NotNil(t, doc.Contests[0].Progress.Solved)
	assert.NotNil(t, doc.Rooms[0].Members)
	assert.NotNil(t, doc.Rooms[0].ProgressByUserID["u1"].Solved)
}

func TestAppendActivity_CapsFeed(t *testing.T) {
	doc := &Document{}
	doc.Normalize()

	for i := 0; i < maxActivities+10; i++ {
		doc.AppendActivity(ActivityEvent{ID: fmt.Sprintf("ev-%d", i)})
	}

	require.Len(t, doc.Activities, maxActivities)
	// the oldest entries were dropped
	assert.Equal(t, "ev-10", doc.Activities[0].ID)
	assert.Equal(t, fmt.Sprintf("ev-%d", maxActivities+9), doc.Activities[len(doc.Activities)-1].ID)
}

func TestFindHelpers(t *testing.T) {
	doc := &Document{
		Users:    []User{{ID: "u1"}},
		Contests: []Contest{{ID: "c1", OwnerUserID: "u1"}},
		Rooms:    []Room{{ID: "r1"}},
	}

	assert.NotNil(t, doc.FindUser("u1"))
	assert.Nil(t, doc.FindUser("u2"))
	assert.NotNil(t, doc.FindContest("u1", "c1"))
	assert.Nil(t, doc.FindContest("u2", "c1"), "contest lookup is owner scoped")
	assert.NotNil(t, doc.FindContestByID("c1"))
	assert.NotNil(t, doc.FindRoom("r1"))
	assert.Nil(t, doc.FindRoom("r2"))
}

func TestProblemSpecMatches(t *testing.T) {
	min, max := 800, 1200
	spec := ProblemSpec{Platform: PlatformCodeforces, Min: &min, Max: &max}

	in := 1000
	out := 1500
	assert.True(t, spec.Matches(NormalizedProblem{Platform: PlatformCodeforces, Difficulty: &in}))
	assert.False(t, spec.Matches(NormalizedProblem{Platform: PlatformCodeforces, Difficulty: &out}))
	assert.False(t, spec.Matches(NormalizedProblem{Platform: PlatformAtCoder, Difficulty: &in}))
	assert.False(t, spec.Matches(NormalizedProblem{Platform: PlatformCodeforces}), "unrated never matches a range")

	open := ProblemSpec{Platform: PlatformAtCoder}
	assert.True(t, open.Matches(NormalizedProblem{Platform: PlatformAtCoder}))
}
