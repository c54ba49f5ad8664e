package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// MNIST dimensions.
const (
	MNISTFeatures = 784 // 28x28 pixels, flattened
	MNISTClasses  = 10
)

// LoadMNIST loads the official IDX-format MNIST files from dataDir.
// With train true it reads train-images-idx3-ubyte and
// train-labels-idx1-ubyte; otherwise the t10k pair. Pixels are
// normalized from 0-255 to [0, 1]. maxSamples of 0 loads everything.
func LoadMNIST[B tensor.Backend](dataDir string, train bool, maxSamples int, seed int64, backend B) (*Dataset[B], error) {
	var imageFile, labelFile string
	if train {
		imageFile = filepath.Join(dataDir, "train-images-idx3-ubyte")
		labelFile = filepath.Join(dataDir, "train-labels-idx1-ubyte")
	} else {
		imageFile = filepath.Join(dataDir, "t10k-images-idx3-ubyte")
		labelFile = filepath.Join(dataDir, "t10k-labels-idx1-ubyte")
	}

	imagesRaw, err := readIDXImages(imageFile)
	if err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	labelsRaw, err := readIDXLabels(labelFile)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	if len(imagesRaw) != len(labelsRaw) {
		return nil, fmt.Errorf("image count (%d) != label count (%d)", len(imagesRaw), len(labelsRaw))
	}

	numSamples := len(imagesRaw)
	if maxSamples > 0 && numSamples > maxSamples {
		numSamples = maxSamples
	}

	images := make([][]float32, numSamples)
	labels := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		images[i] = make([]float32, len(imagesRaw[i]))
		for j, px := range imagesRaw[i] {
			images[i][j] = float32(px) / 255.0
		}
		labels[i] = int32(labelsRaw[i])
	}

	return New(images, labels, MNISTClasses, seed, backend)
}

// LoadCSV loads Kaggle-style MNIST CSV data:
//
//	label,pixel0,pixel1,...,pixel783
//
// The header row is skipped and pixels are normalized to [0, 1].
func LoadCSV[B tensor.Backend](filename string, maxSamples int, seed int64, backend B) (*Dataset[B], error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv file is empty or missing header")
	}
	records = records[1:]

	numSamples := len(records)
	if maxSamples > 0 && numSamples > maxSamples {
		numSamples = maxSamples
		records = records[:numSamples]
	}

	images := make([][]float32, numSamples)
	labels := make([]int32, numSamples)
	for i, record := range records {
		if len(record) != MNISTFeatures+1 {
			return nil, fmt.Errorf("row %d: got %d columns, want %d", i+1, len(record), MNISTFeatures+1)
		}

		label, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid label: %w", i+1, err)
		}
		labels[i] = int32(label)

		images[i] = make([]float32, MNISTFeatures)
		for j := 0; j < MNISTFeatures; j++ {
			pixel, err := strconv.Atoi(record[j+1])
			if err != nil {
				return nil, fmt.Errorf("row %d, column %d: invalid pixel: %w", i+1, j+1, err)
			}
			images[i][j] = float32(pixel) / 255.0
		}
	}

	return New(images, labels, MNISTClasses, seed, backend)
}

// Synthetic builds a small generated dataset shaped like MNIST. Each
// class gets a distinct bright band, repeated until numSamples examples
// exist. Useful for pipeline tests when the real data is absent.
func Synthetic[B tensor.Backend](numSamples int, seed int64, backend B) (*Dataset[B], error) {
	if numSamples <= 0 {
		return nil, fmt.Errorf("synthetic: numSamples must be positive, got %d", numSamples)
	}

	images := make([][]float32, numSamples)
	labels := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		digit := i % MNISTClasses
		labels[i] = int32(digit)

		img := make([]float32, MNISTFeatures)
		startRow := digit * 2
		for row := startRow; row < startRow+8 && row < 28; row++ {
			for col := 5; col < 23; col++ {
				img[row*28+col] = 0.8
			}
		}
		images[i] = img
	}

	return New(images, labels, MNISTClasses, seed, backend)
}
