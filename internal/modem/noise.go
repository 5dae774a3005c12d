package modem

import (
	"math"
	"math/rand"
)

// NoiseOffSNR is the SNR (dB) at and above which no noise is injected.
const NoiseOffSNR = 100.0

// NoiseEnabled reports whether snrDB turns noise injection on.
func NoiseEnabled(snrDB float64) bool {
	return snrDB < NoiseOffSNR
}

// Noise draws additive white Gaussian noise. A nil *Noise injects nothing.
// It is not safe for concurrent use.
type Noise struct {
	rng *rand.Rand
}

// NewNoise returns a noise source with a fixed seed so sweeps are
// reproducible.
func NewNoise(seed int64) *Noise {
	return &Noise{rng: rand.New(rand.NewSource(seed))}
}

// uniform returns a draw in (0, 1]. The +1 offset keeps log() finite.
func (n *Noise) uniform() float64 {
	return (float64(n.rng.Int31()) + 1.0) / (float64(math.MaxInt32) + 1.0)
}

// boxMuller returns a pair of independent standard normal draws.
func (n *Noise) boxMuller() (float64, float64) {
	u1, u2 := n.uniform(), n.uniform()
	r := math.Sqrt(-2.0 * math.Log(u1))
	return r * math.Cos(2*math.Pi*u2), r * math.Sin(2*math.Pi*u2)
}

// NoiseStdDev returns the per-sample noise deviation for a sinusoid of the
// given amplitude at snrDB.
func NoiseStdDev(amplitude, snrDB float64) float64 {
	signalPower := amplitude * amplitude / 2.0
	noisePower := signalPower / math.Pow(10, snrDB/10)
	return math.Sqrt(noisePower)
}

// Gaussian returns one noise sample for a carrier of the given amplitude.
func (n *Noise) Gaussian(amplitude, snrDB float64) float64 {
	if n == nil || amplitude <= 0 || !NoiseEnabled(snrDB) {
		return 0
	}
	g, _ := n.boxMuller()
	return g * NoiseStdDev(amplitude, snrDB)
}

// IQ returns independent noise for the I and Q axes of a unit-energy
// constellation, with half the noise power on each channel.
func (n *Noise) IQ(snrDB float64) (float64, float64) {
	if n == nil || !NoiseEnabled(snrDB) {
		return 0, 0
	}
	stdDev := math.Sqrt(0.5 / math.Pow(10, snrDB/10))
	gi, gq := n.boxMuller()
	return gi * stdDev, gq * stdDev
}
