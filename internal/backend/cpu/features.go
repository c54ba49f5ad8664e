package cpu

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"
)

// Description reports the backend name together with the SIMD features
// the host CPU offers. Purely informational; the compute kernels are
// portable Go plus gonum BLAS.
func (cpu *CPUBackend) Description() string {
	features := make([]string, 0, 3)
	for _, f := range []cpuid.FeatureID{cpuid.AVX2, cpuid.AVX512F, cpuid.SSE42} {
		if cpuid.CPU.Supports(f) {
			features = append(features, f.String())
		}
	}
	if len(features) == 0 {
		return fmt.Sprintf("%s (%s)", cpu.Name(), cpuid.CPU.BrandName)
	}
	return fmt.Sprintf("%s (%s; %v)", cpu.Name(), cpuid.CPU.BrandName, features)
}
