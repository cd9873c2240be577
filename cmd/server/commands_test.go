package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithContext(ctx context.Context, out *bytes.Buffer, args ...string) error {
	root := newRootCmd()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func runScore(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	var out bytes.Buffer
	err := runWithContext(context.Background(), &out, append([]string{"score"}, args...)...)
	if err != nil {
		return nil, err
	}
	got := map[string]any{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	return got, nil
}

func TestScoreFromTarget(t *testing.T) {
	got, err := runScore(t, "--target", "100", "--achieved", "92", "--policy", "higher_better")
	require.NoError(t, err)
	assert.Equal(t, 4.0, got["score"])
	assert.Equal(t, "higher_better", got["targetPolicy"])
}

func TestScoreFromRatings(t *testing.T) {
	got, err := runScore(t, "--ratings", "4, 5, x, 9")
	require.NoError(t, err)
	assert.Equal(t, 4.5, got["score"])
}

func TestScoreNeedsInput(t *testing.T) {
	_, err := runScore(t, "--target", "100")
	assert.Error(t, err)
}

func TestScoreRejectsUnknownPolicy(t *testing.T) {
	_, err := runScore(t, "--target", "100", "--achieved", "90", "--policy", "sideways")
	assert.Error(t, err)
}
