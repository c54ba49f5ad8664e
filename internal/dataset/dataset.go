// Package dataset provides MNIST loading and mini-batch iteration for
// training.
package dataset

import (
	"fmt"
	"math/rand"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// Batch is a mini-batch ready for the model: flattened images and
// one-hot labels as tensors, plus the raw class indices.
type Batch[B tensor.Backend] struct {
	Images  *tensor.Tensor[float32, B] // [size, features]
	Labels  *tensor.Tensor[float32, B] // [size, classes], one-hot rows
	Classes []int32                    // [size]
	Size    int
}

// Dataset iterates labeled examples in shuffled mini-batches.
//
// Batches are drawn without replacement: every example appears exactly
// once per epoch. When an epoch is exhausted the order is reshuffled
// with the dataset's own seeded generator, so runs with the same seed
// visit examples in the same order.
type Dataset[B tensor.Backend] struct {
	images     [][]float32
	labels     []int32
	features   int
	numClasses int
	backend    B

	rng    *rand.Rand
	order  []int
	cursor int
	epoch  int
}

// New creates a Dataset over the given examples. Every image row must
// have the same length and every label must lie in [0, numClasses).
func New[B tensor.Backend](images [][]float32, labels []int32, numClasses int, seed int64, backend B) (*Dataset[B], error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("dataset: no examples")
	}
	if len(images) != len(labels) {
		return nil, fmt.Errorf("dataset: %d images but %d labels", len(images), len(labels))
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("dataset: numClasses must be positive, got %d", numClasses)
	}

	features := len(images[0])
	for i, img := range images {
		if len(img) != features {
			return nil, fmt.Errorf("dataset: image %d has %d features, want %d", i, len(img), features)
		}
	}
	for i, label := range labels {
		if label < 0 || int(label) >= numClasses {
			return nil, fmt.Errorf("dataset: label %d out of range [0, %d) at index %d", label, numClasses, i)
		}
	}

	d := &Dataset[B]{
		images:     images,
		labels:     labels,
		features:   features,
		numClasses: numClasses,
		backend:    backend,
		//nolint:gosec // math/rand for reproducible example shuffling
		rng:   rand.New(rand.NewSource(seed)),
		order: make([]int, len(images)),
	}
	for i := range d.order {
		d.order[i] = i
	}
	d.shuffle()
	return d, nil
}

// NumExamples returns the number of examples.
func (d *Dataset[B]) NumExamples() int { return len(d.images) }

// NumFeatures returns the per-example feature count.
func (d *Dataset[B]) NumFeatures() int { return d.features }

// NumClasses returns the number of label classes.
func (d *Dataset[B]) NumClasses() int { return d.numClasses }

// NumBatches returns how many batches one epoch yields at the given
// batch size, counting a short final batch. This is ceiling division
// rather than floor: an epoch is one full pass over the data, so the
// remainder examples are served in the same epoch instead of being
// carried into the next shuffle.
func (d *Dataset[B]) NumBatches(batchSize int) int {
	return (len(d.images) + batchSize - 1) / batchSize
}

// Epoch returns how many times the dataset has been fully consumed.
func (d *Dataset[B]) Epoch() int { return d.epoch }

// NextBatch returns the next mini-batch of at most batchSize examples.
// The final batch of an epoch may be shorter. Crossing an epoch
// boundary reshuffles the visit order.
func (d *Dataset[B]) NextBatch(batchSize int) *Batch[B] {
	if batchSize <= 0 {
		panic(fmt.Sprintf("dataset: batch size must be positive, got %d", batchSize))
	}

	if d.cursor >= len(d.order) {
		d.epoch++
		d.cursor = 0
		d.shuffle()
	}

	end := d.cursor + batchSize
	if end > len(d.order) {
		end = len(d.order)
	}
	indices := d.order[d.cursor:end]
	d.cursor = end

	size := len(indices)
	images := tensor.Zeros[float32](tensor.Shape{size, d.features}, d.backend)
	labels := tensor.Zeros[float32](tensor.Shape{size, d.numClasses}, d.backend)
	classes := make([]int32, size)

	imgData := images.Data()
	labelData := labels.Data()
	for i, idx := range indices {
		copy(imgData[i*d.features:(i+1)*d.features], d.images[idx])
		labelData[i*d.numClasses+int(d.labels[idx])] = 1
		classes[i] = d.labels[idx]
	}

	return &Batch[B]{Images: images, Labels: labels, Classes: classes, Size: size}
}

// All returns the whole dataset as one batch, in stored order. Used for
// evaluation, where shuffling is pointless.
func (d *Dataset[B]) All() *Batch[B] {
	size := len(d.images)
	images := tensor.Zeros[float32](tensor.Shape{size, d.features}, d.backend)
	labels := tensor.Zeros[float32](tensor.Shape{size, d.numClasses}, d.backend)
	classes := make([]int32, size)

	imgData := images.Data()
	labelData := labels.Data()
	for i := range d.images {
		copy(imgData[i*d.features:(i+1)*d.features], d.images[i])
		labelData[i*d.numClasses+int(d.labels[i])] = 1
		classes[i] = d.labels[i]
	}

	return &Batch[B]{Images: images, Labels: labels, Classes: classes, Size: size}
}

// Split divides the dataset into two parts, with ratio giving the
// fraction assigned to the second part. Both halves get independent
// iteration state seeded from the parent's generator.
func (d *Dataset[B]) Split(ratio float64) (*Dataset[B], *Dataset[B], error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("dataset: split ratio must be in (0, 1), got %v", ratio)
	}
	splitIdx := int(float64(len(d.images)) * (1.0 - ratio))
	if splitIdx == 0 || splitIdx == len(d.images) {
		return nil, nil, fmt.Errorf("dataset: split ratio %v leaves an empty part", ratio)
	}

	first, err := New(d.images[:splitIdx], d.labels[:splitIdx], d.numClasses, d.rng.Int63(), d.backend)
	if err != nil {
		return nil, nil, err
	}
	second, err := New(d.images[splitIdx:], d.labels[splitIdx:], d.numClasses, d.rng.Int63(), d.backend)
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

// shuffle applies a Fisher-Yates pass over the visit order.
func (d *Dataset[B]) shuffle() {
	d.rng.Shuffle(len(d.order), func(i, j int) {
		d.order[i], d.order[j] = d.order[j], d.order[i]
	})
}
