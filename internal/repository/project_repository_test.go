package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amigo-insight/surveydash/internal/models"
)

func TestIncrementProjectCounter_Atomic(t *testing.T) {
	repo := NewProjectRepository(newTestDB(t))
	require.NoError(t, repo.CreateProject(&models.Project{
		ProjectIdentifier: "P1",
		Token:             "tok1",
		Status:            models.ProjectActive,
		Counts:            10,
	}))

	column, ok := models.StatusComplete.ProjectCounterColumn()
	require.True(t, ok)
	require.NoError(t, repo.IncrementProjectCounter("P1", column))
	require.NoError(t, repo.IncrementProjectCounter("P1", column))

	project, err := repo.GetProjectByIdentifier("P1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, project.Complete)
	assert.EqualValues(t, 0, project.Terminate)
}

func TestGetProjectByToken_PreloadsOrderedLinks(t *testing.T) {
	repo := NewProjectRepository(newTestDB(t))
	require.NoError(t, repo.CreateProject(&models.Project{
		ProjectIdentifier: "P1",
		Token:             "tok1",
		Status:            models.ProjectActive,
		CountryLinks: []models.CountryLink{
			{Country: "US", OriginalLink: "https://s.example/us?uid=[UID]", Position: 0},
			{Country: "IN", OriginalLink: "https://s.example/in?uid=[UID]", Position: 1},
		},
	}))

	project, err := repo.GetProjectByToken("tok1")
	require.NoError(t, err)
	require.Len(t, project.CountryLinks, 2)
	assert.Equal(t, "US", project.CountryLinks[0].Country)

	link, ok := project.LinkForCountry("in")
	require.True(t, ok)
	assert.Equal(t, "https://s.example/in?uid=[UID]", link)
}
