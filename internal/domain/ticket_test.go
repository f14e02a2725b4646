package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want TicketStatus
	}{
		{"open", TicketStatusOpen},
		{" OPEN ", TicketStatusOpen},
		{"in_progress", TicketStatusInProgress},
		{"In-Progress", TicketStatusInProgress},
		{"inprogress", TicketStatusInProgress},
		{"progress", TicketStatusInProgress},
		{"closed", TicketStatusClosed},
		{"close", TicketStatusClosed},
		{"Finished", TicketStatusClosed},
		{"done", TicketStatusClosed},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeStatus(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := NormalizeStatus(string(got))
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestNormalizeStatus_Rejects(t *testing.T) {
	for _, in := range []string{"", "pending", "opened", "in progress"} {
		_, err := NormalizeStatus(in)
		require.Error(t, err, in)
		assert.Contains(t, err.Error(), "open, in_progress, closed")
	}
}

func TestParsePriorityAndType(t *testing.T) {
	p, err := ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, TicketPriorityHigh, p)

	_, err = ParsePriority("urgent")
	assert.Error(t, err)

	tt, err := ParseType("Feature_Suggestion")
	require.NoError(t, err)
	assert.Equal(t, TicketTypeFeatureSuggestion, tt)

	_, err = ParseType("question")
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("")
	assert.True(t, ok)
	assert.Equal(t, RoleClient, role)

	role, ok = ParseRole("Support")
	assert.True(t, ok)
	assert.Equal(t, RoleSupport, role)

	_, ok = ParseRole("admin")
	assert.False(t, ok)
}

func TestNewTicket_DefaultsAndCompanyCopy(t *testing.T) {
	company := "c-1"
	creator := &User{ID: "u-1", CompanyID: &company}

	ticket := NewTicket(creator, "  Printer  ", " jammed ", "", "")

	assert.Equal(t, "Printer", ticket.Title)
	assert.Equal(t, "jammed", ticket.Description)
	assert.Equal(t, TicketStatusOpen, ticket.Status)
	assert.Equal(t, TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, TicketTypeSupportRequest, ticket.Type)
	require.NotNil(t, ticket.CompanyID)
	assert.Equal(t, "c-1", *ticket.CompanyID)

	company = "c-2"
	assert.Equal(t, "c-1", *ticket.CompanyID)
}

func TestAssignUnassignTransitions(t *testing.T) {
	tests := []struct {
		from         TicketStatus
		afterAssign  TicketStatus
		afterRelease TicketStatus
	}{
		{TicketStatusOpen, TicketStatusInProgress, TicketStatusOpen},
		{TicketStatusInProgress, TicketStatusInProgress, TicketStatusOpen},
		{TicketStatusClosed, TicketStatusClosed, TicketStatusClosed},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			ticket := &Ticket{Status: tt.from}
			ticket.Assign("agent")
			assert.Equal(t, tt.afterAssign, ticket.Status)
			require.NotNil(t, ticket.AssigneeID)

			ticket.Unassign()
			assert.Equal(t, tt.afterRelease, ticket.Status)
			assert.Nil(t, ticket.AssigneeID)
		})
	}
}

func TestTicketFieldUpdate_Validate(t *testing.T) {
	str := func(s string) *string { return &s }

	_, err := TicketFieldUpdate{}.Validate()
	assert.True(t, errors.Is(err, ErrNoFieldUpdates))

	_, err = TicketFieldUpdate{Title: str("ok"), Priority: str("urgent"), Description: str("  ")}.Validate()
	var problems FieldErrors
	require.ErrorAs(t, err, &problems)
	assert.Contains(t, problems, "priority")
	assert.Contains(t, problems, "description")
	assert.NotContains(t, problems, "title")

	update := TicketFieldUpdate{Title: str(" New "), Status: str("done")}
	assert.True(t, update.TouchesContent())
	assert.False(t, TicketFieldUpdate{Status: str("done")}.TouchesContent())
	changes, err := update.Validate()
	require.NoError(t, err)

	ticket := &Ticket{Title: "Old", Status: TicketStatusOpen}
	ticket.Apply(changes)
	assert.Equal(t, "New", ticket.Title)
	assert.Equal(t, TicketStatusClosed, ticket.Status)
}

func TestVisibleTo(t *testing.T) {
	comments := []TicketComment{
		{ID: "1", IsInternal: false},
		{ID: "2", IsInternal: true},
		{ID: "3", IsInternal: false},
	}

	client := VisibleTo(RoleClient, comments)
	require.Len(t, client, 2)
	assert.Equal(t, "1", client[0].ID)
	assert.Equal(t, "3", client[1].ID)

	assert.Len(t, VisibleTo(RoleSupport, comments), 3)
	assert.False(t, CanSeeInternal(RoleClient))
}
