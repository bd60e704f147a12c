package service

import (
	"errors"
	"testing"
)

func TestSplitFeeFifteenPercent(t *testing.T) {
	platform, seller, err := SplitFee(10000, 1500)
	if err != nil {
		t.Fatalf("split fee failed: %v", err)
	}
	if platform != 1500 || seller != 8500 {
		t.Fatalf("expected 1500/8500, got %d/%d", platform, seller)
	}
}

func TestSplitFeeHalfCentRoundsUp(t *testing.T) {
	// 10 * 15% = 1.5 cents of fee; half-up means the platform takes 2.
	platform, seller, err := SplitFee(10, 1500)
	if err != nil {
		t.Fatalf("split fee failed: %v", err)
	}
	if platform != 2 || seller != 8 {
		t.Fatalf("expected 2/8, got %d/%d", platform, seller)
	}
}

func TestSplitFeeZeroGross(t *testing.T) {
	platform, seller, err := SplitFee(0, 1500)
	if err != nil {
		t.Fatalf("split fee failed: %v", err)
	}
	if platform != 0 || seller != 0 {
		t.Fatalf("expected 0/0, got %d/%d", platform, seller)
	}
}

func TestSplitFeeBoundsFee(t *testing.T) {
	if _, _, err := SplitFee(100, -1); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for negative bps, got %v", err)
	}
	if _, _, err := SplitFee(100, 10001); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for bps > 10000, got %v", err)
	}
	if _, _, err := SplitFee(-1, 1500); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for negative gross, got %v", err)
	}
}

func TestSplitFeeAlwaysSumsToGross(t *testing.T) {
	amounts := []int64{0, 1, 7, 99, 100, 101, 999, 10000, 12345, 1<<40 + 3}
	rates := []int32{0, 1, 333, 1500, 5000, 9999, 10000}
	for _, gross := range amounts {
		for _, bps := range rates {
			platform, seller, err := SplitFee(gross, bps)
			if err != nil {
				t.Fatalf("split fee failed for gross=%d bps=%d: %v", gross, bps, err)
			}
			if platform+seller != gross {
				t.Fatalf("gross=%d bps=%d leaked currency: %d+%d != %d", gross, bps, platform, seller, gross)
			}
			if platform < 0 || seller < 0 {
				t.Fatalf("gross=%d bps=%d produced a negative share: %d/%d", gross, bps, platform, seller)
			}
		}
	}
}
