package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/errors"
	"github.com/applytrack/applytrack-server/internal/gateway"
)

func TestCreateFieldDerivesID(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	f, err := env.fields.CreateField(ctx, user, gateway.SourceUser, CreateFieldParams{
		Name: "Salary Range",
		Type: domain.FieldTypeString,
	})
	require.NoError(t, err)
	assert.Equal(t, "salary-range", f.ID)

	_, err = env.fields.CreateField(ctx, user, gateway.SourceUser, CreateFieldParams{
		Name: "salary range",
		Type: domain.FieldTypeNumber,
	})
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))
}

func TestCreateSelectFieldParsesOptions(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	f, err := env.fields.CreateField(ctx, user, gateway.SourceUser, CreateFieldParams{
		Name:       "Work Mode",
		Type:       domain.FieldTypeSelect,
		RawOptions: "Remote, Hybrid, On Site, remote",
	})
	require.NoError(t, err)
	require.Len(t, f.Options, 3) // duplicate labels collapse

	// A select field without options is unusable.
	_, err = env.fields.CreateField(ctx, user, gateway.SourceUser, CreateFieldParams{
		Name: "Empty Select",
		Type: domain.FieldTypeSelect,
	})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestFieldTypeIsImmutable(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := env.fields.CreateField(ctx, user, gateway.SourceUser, CreateFieldParams{
		Name: "Salary",
		Type: domain.FieldTypeNumber,
	})
	require.NoError(t, err)

	err = env.fields.ChangeFieldType(ctx, user, gateway.SourceUser, "salary", domain.FieldTypeString)
	assert.True(t, errors.Is(err, errors.ErrImmutable))

	// Other attributes stay editable.
	name := "Base Salary"
	f, err := env.fields.UpdateField(ctx, user, gateway.SourceUser, "salary", UpdateFieldParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Base Salary", f.Name)
	assert.Equal(t, domain.FieldTypeNumber, f.Type)
}

func TestSetJobFieldValueValidatesSelectOptions(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	_, err := env.fields.CreateField(ctx, user, gateway.SourceUser, CreateFieldParams{
		Name:       "Work Mode",
		Type:       domain.FieldTypeSelect,
		RawOptions: "Remote, Hybrid",
	})
	require.NoError(t, err)

	// Values are the derived option values, not display labels.
	err = env.fields.SetJobFieldValue(ctx, user, gateway.SourceUser, job.ID, "work-mode", "on-site")
	assert.True(t, errors.Is(err, errors.ErrValidation))

	err = env.fields.SetJobFieldValue(ctx, user, gateway.SourceUser, job.ID, "work-mode", 42)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	require.NoError(t, env.fields.SetJobFieldValue(ctx, user, gateway.SourceUser, job.ID, "work-mode", "remote"))

	got, err := env.jobs.GetJob(ctx, user, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "remote", got.CustomFields["work-mode"])
}

func TestSetJobFieldValueUnknownField(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	job := env.addJob(t, user, "Acme")

	err := env.fields.SetJobFieldValue(context.Background(), user, gateway.SourceUser, job.ID, "no-such-field", "x")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDeleteFieldScrubsJobValues(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job1 := env.addJob(t, user, "Acme")
	job2 := env.addJob(t, user, "Globex")

	_, err := env.fields.CreateField(ctx, user, gateway.SourceUser, CreateFieldParams{
		Name: "Salary",
		Type: domain.FieldTypeNumber,
	})
	require.NoError(t, err)

	require.NoError(t, env.fields.SetJobFieldValue(ctx, user, gateway.SourceUser, job1.ID, "salary", 120000))
	require.NoError(t, env.fields.SetJobFieldValue(ctx, user, gateway.SourceUser, job2.ID, "salary", 95000))

	require.NoError(t, env.fields.DeleteField(ctx, user, gateway.SourceUser, "salary"))

	for _, id := range []string{job1.ID, job2.ID} {
		job, err := env.jobs.GetJob(ctx, user, id)
		require.NoError(t, err)
		_, ok := job.CustomFields["salary"]
		assert.False(t, ok)
	}

	_, err = env.fields.GetField(ctx, user, "salary")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDeleteFieldUndoRestoresValues(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	_, err := env.fields.CreateField(ctx, user, gateway.SourceUser, CreateFieldParams{
		Name: "Recruiter",
		Type: domain.FieldTypeString,
	})
	require.NoError(t, err)
	require.NoError(t, env.fields.SetJobFieldValue(ctx, user, gateway.SourceUser, job.ID, "recruiter", "Sam"))

	require.NoError(t, env.fields.DeleteField(ctx, user, gateway.SourceUser, "recruiter"))

	n := env.notify.Current(user)
	require.NotNil(t, n)
	require.NoError(t, env.notify.Undo(ctx, user, n.ID))

	f, err := env.fields.GetField(ctx, user, "recruiter")
	require.NoError(t, err)
	assert.Equal(t, domain.FieldTypeString, f.Type)

	restored, err := env.jobs.GetJob(ctx, user, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", restored.CustomFields["recruiter"])
}

func TestDeleteFieldScrubsSoftDeletedJobs(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	_, err := env.fields.CreateField(ctx, user, gateway.SourceUser, CreateFieldParams{
		Name: "Recruiter",
		Type: domain.FieldTypeString,
	})
	require.NoError(t, err)
	require.NoError(t, env.fields.SetJobFieldValue(ctx, user, gateway.SourceUser, job.ID, "recruiter", "Sam"))

	// The job is soft-deleted before the field definition goes away.
	require.NoError(t, env.jobs.DeleteJob(ctx, user, gateway.SourceUser, job.ID))
	require.NoError(t, env.fields.DeleteField(ctx, user, gateway.SourceUser, "recruiter"))

	// Undoing the job delete must not resurrect the orphaned value.
	n := env.notify.Current(user)
	require.NotNil(t, n)
	require.NoError(t, env.notify.Undo(ctx, user, n.ID))

	restored, err := env.jobs.GetJob(ctx, user, job.ID)
	require.NoError(t, err)
	_, ok := restored.CustomFields["recruiter"]
	assert.False(t, ok)
}

func TestDeleteAllFields(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	for _, name := range []string{"Salary", "Recruiter"} {
		_, err := env.fields.CreateField(ctx, user, gateway.SourceUser, CreateFieldParams{
			Name: name,
			Type: domain.FieldTypeString,
		})
		require.NoError(t, err)
	}
	require.NoError(t, env.fields.SetJobFieldValue(ctx, user, gateway.SourceUser, job.ID, "salary", "100k"))

	require.NoError(t, env.fields.DeleteAllFields(ctx, user, gateway.SourceUser))

	fields, err := env.fields.ListFields(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, fields)

	got, err := env.jobs.GetJob(ctx, user, job.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CustomFields)
}

func TestClearJobFieldValue(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	_, err := env.fields.CreateField(ctx, user, gateway.SourceUser, CreateFieldParams{
		Name: "Salary",
		Type: domain.FieldTypeString,
	})
	require.NoError(t, err)
	require.NoError(t, env.fields.SetJobFieldValue(ctx, user, gateway.SourceUser, job.ID, "salary", "100k"))
	require.NoError(t, env.fields.ClearJobFieldValue(ctx, user, gateway.SourceUser, job.ID, "salary"))

	got, err := env.jobs.GetJob(ctx, user, job.ID)
	require.NoError(t, err)
	_, ok := got.CustomFields["salary"]
	assert.False(t, ok)

	// Clearing an absent value is a no-op.
	assert.NoError(t, env.fields.ClearJobFieldValue(ctx, user, gateway.SourceUser, job.ID, "salary"))
}
