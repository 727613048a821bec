package service

import (
	"context"
	"testing"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/stretchr/testify/assert"
)

func TestRecordRunsInBackgroundWithActor(t *testing.T) {
	activity, logs := newActivity(t)
	ctx, cancel := context.WithCancel(repository.WithActor(context.Background(), "ali"))
	cancel()

	activity.Record(ctx, "Deleted product: Panadol")
	activity.Record(ctx, "")
	activity.Wait()

	assert.Equal(t, []string{"ali: Deleted product: Panadol"}, logs.actions())
	assert.Len(t, activity.List(context.Background()), 1)
}
