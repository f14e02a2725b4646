package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestCreateCompany(t *testing.T) {
	f := newFixture(t)

	_, err := f.companies.CreateCompany(f.ctx, subject(f.alice), "Initech", nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = f.companies.CreateCompany(f.ctx, subject(f.support), "  ", nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	created, err := f.companies.CreateCompany(f.ctx, subject(f.support), " Initech ", ptr("12.345"))
	require.NoError(t, err)
	assert.Equal(t, "Initech", created.Name)
	assert.Equal(t, "12.345", *created.TaxID)

	_, err = f.companies.CreateCompany(f.ctx, subject(f.support), "Copycat", ptr("12.345"))
	require.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestListCompanies_NewestFirstWithUsers(t *testing.T) {
	f := newFixture(t)

	_, err := f.companies.ListCompanies(f.ctx, subject(f.alice))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	companies, err := f.companies.ListCompanies(f.ctx, subject(f.support))
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Globex", companies[0].Name)
	assert.Equal(t, "Acme", companies[1].Name)
	require.Len(t, companies[1].Users, 2)
	assert.Equal(t, "Alice", companies[1].Users[0].Name)
}

func TestGetCompany(t *testing.T) {
	f := newFixture(t)

	_, err := f.companies.GetCompany(f.ctx, subject(f.alice), "does-not-exist")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), "client check precedes lookup")

	_, err = f.companies.GetCompany(f.ctx, subject(f.alice), f.globex.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	own, err := f.companies.GetCompany(f.ctx, subject(f.alice), f.acme.ID)
	require.NoError(t, err)
	assert.Len(t, own.Users, 2)

	_, err = f.companies.GetCompany(f.ctx, subject(f.support), "does-not-exist")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestUpdateCompany(t *testing.T) {
	f := newFixture(t)
	_, err := f.companies.UpdateCompany(f.ctx, subject(f.support), f.globex.ID, CompanyUpdateInput{TaxID: ptr("999")})
	require.NoError(t, err)

	_, err = f.companies.UpdateCompany(f.ctx, subject(f.support), f.acme.ID, CompanyUpdateInput{TaxID: ptr("999")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	same, err := f.companies.UpdateCompany(f.ctx, subject(f.support), f.globex.ID, CompanyUpdateInput{Name: ptr("Globex Corp"), TaxID: ptr("999")})
	require.NoError(t, err, "own tax id does not conflict")
	assert.Equal(t, "Globex Corp", same.Name)

	cleared, err := f.companies.UpdateCompany(f.ctx, subject(f.support), f.globex.ID, CompanyUpdateInput{TaxID: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.TaxID)

	_, err = f.companies.UpdateCompany(f.ctx, subject(f.support), "missing", CompanyUpdateInput{Name: ptr("x")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = f.companies.UpdateCompany(f.ctx, subject(f.alice), f.acme.ID, CompanyUpdateInput{Name: ptr("x")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestDeleteCompany(t *testing.T) {
	f := newFixture(t)
	empty, err := f.companies.CreateCompany(f.ctx, subject(f.support), "Empty", nil)
	require.NoError(t, err)

	err = f.companies.DeleteCompany(f.ctx, subject(f.support), f.acme.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.Equal(t, "cannot delete company: 2 users are still associated", apperrors.ToDomainError(err).Message)

	require.NoError(t, f.companies.DeleteCompany(f.ctx, subject(f.support), empty.ID))

	err = f.companies.DeleteCompany(f.ctx, subject(f.support), empty.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestAssignUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.companies.AssignUser(f.ctx, subject(f.support), f.acme.ID, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = f.companies.AssignUser(f.ctx, subject(f.support), "missing", f.drifter.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = f.companies.AssignUser(f.ctx, subject(f.support), f.acme.ID, "ghost")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = f.companies.AssignUser(f.ctx, subject(f.alice), f.acme.ID, f.drifter.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	user, err := f.companies.AssignUser(f.ctx, subject(f.support), f.acme.ID, f.drifter.ID)
	require.NoError(t, err)
	assert.Equal(t, f.acme.ID, *user.CompanyID)

	stored, err := f.store.Users().GetByID(f.ctx, f.drifter.ID)
	require.NoError(t, err)
	assert.Equal(t, f.acme.ID, *stored.CompanyID)
}
