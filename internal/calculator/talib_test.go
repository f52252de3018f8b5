package calculator

import (
	"testing"

	"github.com/markcheno/go-talib"
)

// go-talib pads its outputs to the input length; compare only the defined tail.

func TestSMA_MatchesTalib(t *testing.T) {
	bars := randomWalk(21, 250)
	closes := extractCloses(bars)
	for _, p := range []int{5, 20, 50} {
		ref := talib.Sma(closes, p)
		got := SMA(bars, p)
		for i, v := range got {
			assertClose(t, "SMA vs talib", v.Value, ref[i+p-1], 1e-9)
		}
	}
}

func TestEMA_MatchesTalib(t *testing.T) {
	bars := randomWalk(22, 250)
	closes := extractCloses(bars)
	for _, p := range []int{9, 12, 26} {
		ref := talib.Ema(closes, p)
		got := EMA(bars, p)
		for i, v := range got {
			assertClose(t, "EMA vs talib", v.Value, ref[i+p-1], 1e-9)
		}
	}
}

func TestBollinger_MatchesTalib(t *testing.T) {
	bars := randomWalk(23, 250)
	closes := extractCloses(bars)
	upper, middle, lower := talib.BBands(closes, 20, 2, 2, talib.SMA)
	got := Bollinger(bars, 20, 2)
	for i, b := range got {
		j := i + 19
		assertClose(t, "upper vs talib", b.Upper, upper[j], 1e-6)
		assertClose(t, "middle vs talib", b.Middle, middle[j], 1e-6)
		assertClose(t, "lower vs talib", b.Lower, lower[j], 1e-6)
	}
}
