package alloc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mit-pdos/go-simplefs/common"
	"github.com/mit-pdos/go-simplefs/util"
)

var (
	ErrNoSpace     = errors.New("not enough free blocks")
	ErrBlockInUse  = errors.New("block is already in use")
	ErrBlockFree   = errors.New("block is already free")
	ErrOutOfBounds = errors.New("block number out of range")
)

// Alloc uses a bit map to allocate and free numbers. Bit 0 corresponds to
// number 0, bit 1 to 1, and so on; a set bit means allocated.
//
// Allocation is first-fit: every request scans from number 0, so low numbers
// are reused first.
type Alloc struct {
	mu     *sync.Mutex // protects bitmap
	max    uint64
	bitmap []byte
}

func MkAlloc(max uint64) *Alloc {
	a := &Alloc{
		mu:     new(sync.Mutex),
		max:    max,
		bitmap: make([]byte, util.RoundUp(max, 8)),
	}
	return a
}

// MkMaxAlloc returns an allocator for the numbers [0, max).
func MkMaxAlloc(max uint64) *Alloc {
	if max%8 != 0 {
		panic("max must be a multiple of 8")
	}
	return MkAlloc(max)
}

// MkDataAlloc covers the file system's data blocks.
func MkDataAlloc() *Alloc {
	return MkMaxAlloc(common.NDATABLK)
}

func (a *Alloc) Max() uint64 {
	return a.max
}

func (a *Alloc) isFree(n uint64) bool {
	return a.bitmap[n/8]&(1<<(n%8)) == 0
}

func (a *Alloc) markUsed(n uint64) {
	a.bitmap[n/8] = a.bitmap[n/8] | (1 << (n % 8))
}

func (a *Alloc) free(n uint64) {
	a.bitmap[n/8] = a.bitmap[n/8] & ^(1 << (n % 8))
}

func (a *Alloc) IsFree(n uint64) bool {
	if n >= a.max {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isFree(n)
}

// MarkUsed allocates the specific number n.
func (a *Alloc) MarkUsed(n uint64) error {
	if n >= a.max {
		return fmt.Errorf("%w: %d", ErrOutOfBounds, n)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.isFree(n) {
		return fmt.Errorf("%w: %d", ErrBlockInUse, n)
	}
	a.markUsed(n)
	return nil
}

// findFree scans left to right from 0 and returns the first k free numbers,
// or fewer if the bitmap runs out.
func (a *Alloc) findFree(k uint64) []uint64 {
	nums := make([]uint64, 0, k)
	if k == 0 {
		return nums
	}
	for n := uint64(0); n < a.max; n++ {
		if a.isFree(n) {
			nums = append(nums, n)
			if uint64(len(nums)) == k {
				break
			}
		}
	}
	return nums
}

// AllocRun allocates k numbers, taking the k lowest free ones. If fewer than
// k are free nothing is allocated.
func (a *Alloc) AllocRun(k uint64) ([]uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	nums := a.findFree(k)
	if uint64(len(nums)) < k {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNoSpace, k, len(nums))
	}
	for _, n := range nums {
		a.markUsed(n)
	}
	util.DPrintf(3, "AllocRun %d -> %v\n", k, nums)
	return nums, nil
}

func (a *Alloc) FreeNum(n uint64) error {
	if n >= a.max {
		return fmt.Errorf("%w: %d", ErrOutOfBounds, n)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.isFree(n) {
		return fmt.Errorf("%w: %d", ErrBlockFree, n)
	}
	a.free(n)
	util.DPrintf(3, "FreeNum %d\n", n)
	return nil
}

func popCnt(b byte) uint64 {
	var count uint64
	var x = b
	for i := uint64(0); i < 8; i++ {
		count += uint64(x & 1)
		x = x >> 1
	}
	return count
}

// NumUsed counts allocated numbers.
func (a *Alloc) NumUsed() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var count uint64
	for _, b := range a.bitmap {
		count += popCnt(b)
	}
	return count
}

func (a *Alloc) NumFree() uint64 {
	return a.max - a.NumUsed()
}

// Bitmap returns a copy of the bitmap.
func (a *Alloc) Bitmap() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return util.CloneByteSlice(a.bitmap)
}
