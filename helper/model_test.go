package helper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stageModel creates a local model directory so PrepareModel finds it
// cached and skips the download.
func stageModel(t *testing.T, sanitizedName string) string {
	modelPath := filepath.Join("./models", sanitizedName)
	require.NoError(t, os.MkdirAll(modelPath, 0750), "Expected model directory creation to succeed")
	t.Cleanup(func() {
		os.RemoveAll(modelPath)
	})
	return modelPath
}

func TestPrepareModel(t *testing.T) {
	t.Run("Cached model is returned without download", func(t *testing.T) {
		modelPath := stageModel(t, "wikigraph_test-encoder")

		path, err := PrepareModel("wikigraph/test-encoder", "")
		assert.NoError(t, err, "Expected PrepareModel to not return an error for a cached model")
		assert.Equal(t, modelPath, path, "Expected the cached model path back")
	})

	t.Run("Slashes in the model name are sanitized", func(t *testing.T) {
		expectedPath := stageModel(t, "sentence-transformers_all-MiniLM-L6-v2")

		path, err := PrepareModel("sentence-transformers/all-MiniLM-L6-v2", "onnx/model.onnx")
		assert.NoError(t, err, "Expected PrepareModel to not return an error")
		assert.Equal(t, expectedPath, path, "Expected the path to use the sanitized directory name")
	})

	t.Run("Names without a slash map to themselves", func(t *testing.T) {
		expectedPath := stageModel(t, "local-encoder")

		path, err := PrepareModel("local-encoder", "")
		assert.NoError(t, err, "Expected PrepareModel to not return an error")
		assert.Equal(t, expectedPath, path, "Expected the model name to be used directly")
	})

	t.Run("Onnx file path is optional for cached models", func(t *testing.T) {
		stageModel(t, "wikigraph_onnx-variant")

		withPath, err := PrepareModel("wikigraph/onnx-variant", "onnx/model.onnx")
		assert.NoError(t, err, "Expected PrepareModel with an onnx path to not return an error")

		withoutPath, err := PrepareModel("wikigraph/onnx-variant", "")
		assert.NoError(t, err, "Expected PrepareModel without an onnx path to not return an error")
		assert.Equal(t, withPath, withoutPath, "Expected the same cached path either way")
	})
}
