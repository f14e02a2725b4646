package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestSearchPattern_EscapesWildcards(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Printer", "%printer%"},
		{"  a_b ", `%a\_b%`},
		{"100%", `%100\%%`},
		{`C:\temp`, `%c:\\temp%`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, searchPattern(tt.in))
		})
	}
}

func TestBuildTicketWhere(t *testing.T) {
	company := "c-1"
	status := domain.TicketStatusOpen
	search := "a_b"

	where, args := buildTicketWhere(TicketFilter{CompanyID: &company, Status: &status, SearchTerm: &search})

	assert.Contains(t, where, "t.company_id=$1")
	assert.Contains(t, where, "t.status=$2")
	assert.Contains(t, where, `LOWER(t.title) LIKE $3 ESCAPE '\'`)
	assert.Contains(t, where, `LOWER(t.description) LIKE $3 ESCAPE '\'`)
	require.Len(t, args, 3)
	assert.Equal(t, `%a\_b%`, args[2])
}
