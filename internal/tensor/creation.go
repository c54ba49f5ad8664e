package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy))
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor filled with random values from the standard
// normal distribution N(0, 1).
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return RandnStd[T, B](shape, 1.0, b)
}

// RandnStd creates a tensor filled with random values from N(0, std).
func RandnStd[T DType, B Backend](shape Shape, std float64, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		//nolint:gosec // math/rand for weight initialization (not security-critical)
		data[i] = T(rand.NormFloat64() * std)
	}
	return t
}

// Arange creates a 1D tensor with values from start to end (exclusive).
func Arange[T DType, B Backend](start, end T, b B) *Tensor[T, B] {
	n := int(end - start)
	if n < 0 {
		n = 0
	}
	t := Zeros[T, B](Shape{n}, b)
	data := t.Data()
	for i := range data {
		data[i] = start + T(i)
	}
	return t
}
