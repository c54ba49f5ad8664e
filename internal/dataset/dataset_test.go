package dataset_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradflow-ml/gradflow/internal/backend/cpu"
	"github.com/gradflow-ml/gradflow/internal/dataset"
)

func smallDataset(t *testing.T, n int, seed int64) *dataset.Dataset[*cpu.CPUBackend] {
	t.Helper()
	images := make([][]float32, n)
	labels := make([]int32, n)
	for i := range images {
		images[i] = []float32{float32(i), float32(i) * 2}
		labels[i] = int32(i % 3)
	}
	d, err := dataset.New(images, labels, 3, seed, cpu.New())
	require.NoError(t, err)
	return d
}

func TestNew_Validation(t *testing.T) {
	backend := cpu.New()

	_, err := dataset.New[*cpu.CPUBackend](nil, nil, 3, 1, backend)
	assert.Error(t, err, "empty dataset")

	_, err = dataset.New([][]float32{{1}}, []int32{0, 1}, 3, 1, backend)
	assert.Error(t, err, "length mismatch")

	_, err = dataset.New([][]float32{{1}, {1, 2}}, []int32{0, 1}, 3, 1, backend)
	assert.Error(t, err, "ragged features")

	_, err = dataset.New([][]float32{{1}}, []int32{5}, 3, 1, backend)
	assert.Error(t, err, "label out of range")
}

func TestNextBatch_CoversEpochWithoutReplacement(t *testing.T) {
	d := smallDataset(t, 10, 42)

	seen := make(map[float32]int)
	for i := 0; i < d.NumBatches(3); i++ {
		batch := d.NextBatch(3)
		for r := 0; r < batch.Size; r++ {
			seen[batch.Images.At(r, 0)]++
		}
	}

	assert.Len(t, seen, 10, "every example visited")
	for v, count := range seen {
		assert.Equal(t, 1, count, "example %v repeated within epoch", v)
	}
}

func TestNextBatch_ShortFinalBatch(t *testing.T) {
	d := smallDataset(t, 10, 1)

	sizes := []int{}
	for i := 0; i < d.NumBatches(4); i++ {
		sizes = append(sizes, d.NextBatch(4).Size)
	}
	assert.Equal(t, []int{4, 4, 2}, sizes)
}

func TestNextBatch_ReshufflesBetweenEpochs(t *testing.T) {
	d := smallDataset(t, 20, 7)

	firstEpoch := []float32{}
	for i := 0; i < d.NumBatches(5); i++ {
		b := d.NextBatch(5)
		for r := 0; r < b.Size; r++ {
			firstEpoch = append(firstEpoch, b.Images.At(r, 0))
		}
	}
	require.Equal(t, 0, d.Epoch())

	secondEpoch := []float32{}
	for i := 0; i < d.NumBatches(5); i++ {
		b := d.NextBatch(5)
		for r := 0; r < b.Size; r++ {
			secondEpoch = append(secondEpoch, b.Images.At(r, 0))
		}
	}
	assert.Equal(t, 1, d.Epoch())
	assert.NotEqual(t, firstEpoch, secondEpoch, "epoch order should change after reshuffle")
}

func TestNextBatch_DeterministicForSameSeed(t *testing.T) {
	a := smallDataset(t, 10, 99)
	b := smallDataset(t, 10, 99)

	ba, bb := a.NextBatch(10), b.NextBatch(10)
	assert.Equal(t, ba.Classes, bb.Classes)
	assert.Equal(t, ba.Images.Data(), bb.Images.Data())
}

func TestNextBatch_OneHotLabels(t *testing.T) {
	d := smallDataset(t, 6, 3)
	batch := d.NextBatch(6)

	for r := 0; r < batch.Size; r++ {
		var sum float32
		for c := 0; c < 3; c++ {
			sum += batch.Labels.At(r, c)
		}
		assert.Equal(t, float32(1), sum, "exactly one hot unit per row")
		assert.Equal(t, float32(1), batch.Labels.At(r, int(batch.Classes[r])))
	}
}

func TestAll_PreservesOrder(t *testing.T) {
	d := smallDataset(t, 5, 11)
	batch := d.All()

	require.Equal(t, 5, batch.Size)
	for i := 0; i < 5; i++ {
		assert.Equal(t, float32(i), batch.Images.At(i, 0))
		assert.Equal(t, int32(i%3), batch.Classes[i])
	}
}

func TestSplit(t *testing.T) {
	d := smallDataset(t, 10, 5)

	train, val, err := d.Split(0.2)
	require.NoError(t, err)
	assert.Equal(t, 8, train.NumExamples())
	assert.Equal(t, 2, val.NumExamples())

	_, _, err = d.Split(1.5)
	assert.Error(t, err)
}

func TestSynthetic(t *testing.T) {
	d, err := dataset.Synthetic(25, 1, cpu.New())
	require.NoError(t, err)

	assert.Equal(t, 25, d.NumExamples())
	assert.Equal(t, dataset.MNISTFeatures, d.NumFeatures())
	assert.Equal(t, dataset.MNISTClasses, d.NumClasses())
}

// writeIDX writes minimal IDX image and label files with n examples of
// 2x2 images.
func writeIDX(t *testing.T, dir string, n int) {
	t.Helper()

	imgPath := filepath.Join(dir, "train-images-idx3-ubyte")
	f, err := os.Create(imgPath)
	require.NoError(t, err)
	require.NoError(t, binary.Write(f, binary.BigEndian, []uint32{2051, uint32(n), 2, 2}))
	for i := 0; i < n; i++ {
		_, err = f.Write([]byte{byte(i), 0, 255, byte(i)})
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	labelPath := filepath.Join(dir, "train-labels-idx1-ubyte")
	f, err = os.Create(labelPath)
	require.NoError(t, err)
	require.NoError(t, binary.Write(f, binary.BigEndian, []uint32{2049, uint32(n)}))
	for i := 0; i < n; i++ {
		_, err = f.Write([]byte{byte(i % 10)})
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())
}

func TestLoadMNIST_IDX(t *testing.T) {
	dir := t.TempDir()
	writeIDX(t, dir, 4)

	d, err := dataset.LoadMNIST(dir, true, 0, 1, cpu.New())
	require.NoError(t, err)

	assert.Equal(t, 4, d.NumExamples())
	assert.Equal(t, 4, d.NumFeatures())

	batch := d.All()
	// Pixel 255 normalizes to 1.0.
	assert.Equal(t, float32(1), batch.Images.At(0, 2))
}

func TestLoadMNIST_BadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "train-images-idx3-ubyte")
	require.NoError(t, os.WriteFile(path, []byte{0, 0, 0, 1, 0, 0, 0, 0}, 0o644))

	_, err := dataset.LoadMNIST(dir, true, 0, 1, cpu.New())
	assert.ErrorContains(t, err, "magic")
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mnist.csv")

	header := "label"
	row := "7"
	for i := 0; i < dataset.MNISTFeatures; i++ {
		header += ",pixel"
		row += ",255"
	}
	require.NoError(t, os.WriteFile(path, []byte(header+"\n"+row+"\n"), 0o644))

	d, err := dataset.LoadCSV(path, 0, 1, cpu.New())
	require.NoError(t, err)
	require.Equal(t, 1, d.NumExamples())

	batch := d.All()
	assert.Equal(t, int32(7), batch.Classes[0])
	assert.Equal(t, float32(1), batch.Images.At(0, 0))
}
