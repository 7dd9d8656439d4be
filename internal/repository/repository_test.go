package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/datamimic/internal/apperrors"
	"github.com/ashwinyue/datamimic/internal/model"
	"github.com/ashwinyue/datamimic/internal/repository"
	"github.com/ashwinyue/datamimic/internal/testutil"
)

func TestDatasetRepository_CreateGet(t *testing.T) {
	repos := testutil.NewTestRepositories(t)
	ctx := context.Background()

	created := testutil.CreateDataset(t, repos, "people")
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.UploadedAt.IsZero())

	got, err := repos.Dataset.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, testutil.SampleCSV, got.FileData)
	assert.Equal(t, created.ColumnList(), got.ColumnList())

	missing, err := repos.Dataset.GetByID(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDatasetRepository_Delete(t *testing.T) {
	repos := testutil.NewTestRepositories(t)
	ctx := context.Background()

	dataset := testutil.CreateDataset(t, repos, "people")
	gen := testutil.CreateGeneration(t, repos, dataset.ID, model.GenerationStatusCompleted, time.Time{})
	require.NoError(t, repos.Evaluation.Create(ctx, model.NewEvaluation(gen.ID, model.EvaluationMetrics{})))

	require.NoError(t, repos.Dataset.Delete(ctx, dataset.ID))

	var datasets, generations, evaluations int64
	require.NoError(t, repos.DB.Model(&model.Dataset{}).Count(&datasets).Error)
	require.NoError(t, repos.DB.Model(&model.Generation{}).Count(&generations).Error)
	require.NoError(t, repos.DB.Model(&model.Evaluation{}).Count(&evaluations).Error)
	assert.Zero(t, datasets)
	assert.Zero(t, generations)
	assert.Zero(t, evaluations)

	assert.NoError(t, repos.Dataset.Delete(ctx, "missing"))
}

func TestGenerationRepository_ListByDataset(t *testing.T) {
	repos := testutil.NewTestRepositories(t)
	ctx := context.Background()

	a := testutil.CreateDataset(t, repos, "a")
	b := testutil.CreateDataset(t, repos, "b")
	base := time.Now().UTC().Add(-time.Hour)
	oldest := testutil.CreateGeneration(t, repos, a.ID, model.GenerationStatusFailed, base)
	newest := testutil.CreateGeneration(t, repos, a.ID, model.GenerationStatusCompleted, base.Add(2*time.Minute))
	middle := testutil.CreateGeneration(t, repos, a.ID, model.GenerationStatusProcessing, base.Add(time.Minute))
	testutil.CreateGeneration(t, repos, b.ID, model.GenerationStatusProcessing, base.Add(3*time.Minute))

	list, err := repos.Generation.ListByDataset(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, newest.ID, list[0].ID)
	assert.Equal(t, middle.ID, list[1].ID)
	assert.Equal(t, oldest.ID, list[2].ID)

	processing, err := repos.Generation.ListByStatus(ctx, model.GenerationStatusProcessing)
	require.NoError(t, err)
	assert.Len(t, processing, 2)

	latest, err := repos.Generation.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, latest.DatasetID)
}

func TestGenerationRepository_Finish(t *testing.T) {
	repos := testutil.NewTestRepositories(t)
	ctx := context.Background()

	dataset := testutil.CreateDataset(t, repos, "people")
	gen := testutil.CreateGeneration(t, repos, dataset.ID, model.GenerationStatusProcessing, time.Time{})

	data := "a,b\n1,2\n"
	now := time.Now().UTC()
	updated, err := repos.Generation.Finish(ctx, gen.ID, model.GenerationUpdate{
		Status:        model.GenerationStatusCompleted,
		SyntheticData: &data,
		CompletedAt:   &now,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.GenerationStatusCompleted, updated.Status)
	assert.Equal(t, data, *updated.SyntheticData)
	assert.NotNil(t, updated.CompletedAt)
	assert.Nil(t, updated.ErrorMessage)
	assert.Equal(t, gen.GeneratedAt.Unix(), updated.GeneratedAt.Unix())

	missing, err := repos.Generation.Finish(ctx, "missing", model.GenerationUpdate{Status: model.GenerationStatusFailed})
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGenerationRepository_FinishOnlyOnce(t *testing.T) {
	repos := testutil.NewTestRepositories(t)
	ctx := context.Background()

	dataset := testutil.CreateDataset(t, repos, "people")
	gen := testutil.CreateGeneration(t, repos, dataset.ID, model.GenerationStatusProcessing, time.Time{})

	msg := "interrupted"
	first, err := repos.Generation.Finish(ctx, gen.ID, model.GenerationUpdate{
		Status:       model.GenerationStatusFailed,
		ErrorMessage: &msg,
	})
	require.NoError(t, err)
	require.NotNil(t, first)

	data := "a\n1\n"
	second, err := repos.Generation.Finish(ctx, gen.ID, model.GenerationUpdate{
		Status:        model.GenerationStatusCompleted,
		SyntheticData: &data,
	})
	require.NoError(t, err)
	assert.Nil(t, second)

	stored, err := repos.Generation.GetByID(ctx, gen.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GenerationStatusFailed, stored.Status)
	assert.Equal(t, msg, *stored.ErrorMessage)
	assert.Nil(t, stored.SyntheticData)
}

func TestRepositories_TransactionRollback(t *testing.T) {
	repos := testutil.NewTestRepositories(t)
	ctx := context.Background()

	dataset := testutil.CreateDataset(t, repos, "people")
	gen := testutil.CreateGeneration(t, repos, dataset.ID, model.GenerationStatusProcessing, time.Time{})

	boom := errors.New("boom")
	err := repos.Transaction(ctx, func(tx *repository.Repositories) error {
		updated, err := tx.Generation.Finish(ctx, gen.ID, model.GenerationUpdate{Status: model.GenerationStatusCompleted})
		require.NoError(t, err)
		require.NotNil(t, updated)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := repos.Generation.GetByID(ctx, gen.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GenerationStatusProcessing, stored.Status)
}

func TestGenerationRepository_Empty(t *testing.T) {
	repos := testutil.NewTestRepositories(t)
	ctx := context.Background()

	latest, err := repos.Generation.GetLatest(ctx)
	assert.NoError(t, err)
	assert.Nil(t, latest)

	got, err := repos.Generation.GetByID(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)

	list, err := repos.Generation.ListByDataset(ctx, "missing")
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestEvaluationRepository(t *testing.T) {
	repos := testutil.NewTestRepositories(t)
	ctx := context.Background()

	dataset := testutil.CreateDataset(t, repos, "people")
	gen := testutil.CreateGeneration(t, repos, dataset.ID, model.GenerationStatusCompleted, time.Time{})

	metrics := model.EvaluationMetrics{
		PrivacyScore: testutil.Float(91),
		StatisticalMetrics: &model.StatisticalMetrics{
			OriginalMean: map[string]float64{"age": 38},
		},
		DistributionData: []model.DistributionSeries{{Column: "age", Bins: []float64{0, 50, 100}}},
		CorrelationData:  &model.CorrelationData{ColumnNames: []string{"age"}},
	}
	require.NoError(t, repos.Evaluation.Create(ctx, model.NewEvaluation(gen.ID, metrics)))

	got, err := repos.Evaluation.GetByGenerationID(ctx, gen.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 91, *got.PrivacyScore, 1e-9)
	assert.Nil(t, got.UtilityScore)
	assert.Equal(t, 38.0, got.StatisticalMetrics.Data().OriginalMean["age"])
	assert.Equal(t, []float64{0, 50, 100}, got.DistributionData.Data()[0].Bins)
	assert.Equal(t, []string{"age"}, got.CorrelationData.Data().ColumnNames)

	err = repos.Evaluation.Create(ctx, model.NewEvaluation(gen.ID, metrics))
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	none, err := repos.Evaluation.GetByGenerationID(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, none)
}
