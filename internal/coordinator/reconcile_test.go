package coordinator

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/mochiyoru/internal/models"
)

func TestParseURL_MemberForms(t *testing.T) {
	for _, raw := range []string{`["A","B"]`, `[{"name":"A"},{"name":"B"}]`} {
		t.Run(raw, func(t *testing.T) {
			u, err := ParseURL(url.Values{ParamMembers: {raw}})
			require.NoError(t, err)
			assert.Equal(t, []string{"A", "B"}, u.Members)
		})
	}
}

func TestParseURL_Invalid(t *testing.T) {
	q := url.Values{
		ParamGroupID:   {"g1"},
		ParamGroupName: {"Trip"},
		ParamMembers:   {`[1,2]`},
		ParamItems:     {`{"name":"Tent"}`},
	}

	u, err := ParseURL(q)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidMembers)
	assert.ErrorIs(t, err, ErrInvalidItems)

	assert.Equal(t, "g1", u.GroupID)
	assert.Equal(t, "Trip", u.GroupName)
	assert.Nil(t, u.Members)
	assert.Nil(t, u.Items)
}

func TestParseURL_Items(t *testing.T) {
	u, err := ParseURL(url.Values{ParamItems: {`[{"name":"Tent","quantity":2,"assignee":"everyone"}]`}})
	require.NoError(t, err)
	require.Len(t, u.Items, 1)
	assert.Equal(t, "Tent", u.Items[0].Name)
	assert.Equal(t, 2, *u.Items[0].Quantity)
	assert.Equal(t, models.AssigneeEveryone, u.Items[0].Assignee)
}

func TestReconcile_Precedence(t *testing.T) {
	snap := models.Snapshot{
		GroupID:   "g1",
		GroupName: "From snapshot",
		Members:   []string{"Rik"},
		Items:     []models.Item{{Name: "Tent"}},
	}
	defaults := Defaults{GroupName: "New group"}

	t.Run("URL overrides snapshot", func(t *testing.T) {
		m := Reconcile(URLState{GroupName: "From URL", Members: []string{"Marin"}}, snap, defaults)
		assert.Equal(t, "g1", m.GroupID)
		assert.Equal(t, "From URL", m.GroupName)
		assert.Equal(t, []string{"Marin"}, m.Members)
		assert.Equal(t, []models.Item{{Name: "Tent"}}, m.Items)
	})

	t.Run("snapshot fills absent fields", func(t *testing.T) {
		m := Reconcile(URLState{}, snap, defaults)
		assert.Equal(t, snap.GroupName, m.GroupName)
		assert.Equal(t, snap.Members, m.Members)
	})

	t.Run("default when neither has a value", func(t *testing.T) {
		m := Reconcile(URLState{}, models.Snapshot{}, defaults)
		assert.Equal(t, "New group", m.GroupName)
		assert.Empty(t, m.GroupID)
		assert.NotNil(t, m.Members)
		assert.NotNil(t, m.Items)
	})

	t.Run("explicit empty list in URL wins", func(t *testing.T) {
		m := Reconcile(URLState{Members: []string{}}, snap, defaults)
		assert.Empty(t, m.Members)
	})

	t.Run("result does not alias the snapshot", func(t *testing.T) {
		m := Reconcile(URLState{}, snap, defaults)
		m.Members[0] = "changed"
		assert.Equal(t, "Rik", snap.Members[0])
	})
}

func TestSnapshotFor(t *testing.T) {
	st := &models.State{}
	st.Remember(models.Snapshot{GroupID: "g1", GroupName: "One"})
	st.Remember(models.Snapshot{GroupID: "g2", GroupName: "Two"})

	assert.Equal(t, "Two", SnapshotFor(st, "").GroupName)
	assert.Equal(t, "Two", SnapshotFor(st, "g2").GroupName)
	assert.Equal(t, "One", SnapshotFor(st, "g1").GroupName)
	assert.Equal(t, models.Snapshot{}, SnapshotFor(st, "unknown"))
}

func TestConsumeEditMode(t *testing.T) {
	t.Run("flag with known group enters edit mode", func(t *testing.T) {
		st := &models.State{EditMode: models.EditModeMembers}
		st.Remember(models.Snapshot{GroupID: "g1"})

		assert.True(t, ConsumeEditMode(st))
		assert.Empty(t, st.EditMode)
	})

	t.Run("flag without group id is cleared", func(t *testing.T) {
		st := &models.State{EditMode: models.EditModeMembers}

		assert.False(t, ConsumeEditMode(st))
		assert.Empty(t, st.EditMode)
	})

	t.Run("unknown flag value is ignored and cleared", func(t *testing.T) {
		st := &models.State{EditMode: "items", CurrentGroupID: "g1"}

		assert.False(t, ConsumeEditMode(st))
		assert.Empty(t, st.EditMode)
	})

	t.Run("no flag", func(t *testing.T) {
		st := &models.State{CurrentGroupID: "g1"}
		assert.False(t, ConsumeEditMode(st))
	})
}

func TestNextURL_RoundTrip(t *testing.T) {
	m := Model{
		GroupID:   "g1",
		GroupName: "Trip & more",
		Members:   []string{"Rik", "Marin"},
		Items:     []models.Item{{Name: "Camera", Quantity: models.IntPtr(1), Assignee: "Rik"}},
	}

	link := NextURL("/items", m, true)
	require.True(t, strings.HasPrefix(link, "/items?"))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	u, err := ParseURL(parsed.Query())
	require.NoError(t, err)

	assert.Equal(t, m, Reconcile(u, models.Snapshot{}, Defaults{}))
}

func TestNextURL_WithoutItems(t *testing.T) {
	link := NextURL("/share", Model{GroupID: "g1", Items: []models.Item{{Name: "Tent"}}}, false)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.False(t, parsed.Query().Has(ParamItems))
	assert.Equal(t, "[]", parsed.Query().Get(ParamMembers))
}

func TestFallbackID(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	a := FallbackID(now)
	b := FallbackID(now)

	assert.True(t, strings.HasPrefix(a, "loyw3v28"), a)
	assert.Len(t, a, len("loyw3v28")+6)
	assert.NotEqual(t, a, b)
}
