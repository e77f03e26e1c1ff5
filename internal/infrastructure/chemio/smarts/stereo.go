package smarts

import (
	"github.com/turtacn/molsmarts/internal/domain/molecule"
	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

const (
	dirUp   = "/"
	dirDown = `\`
)

// StereoDirections maps single bond indexes to the direction symbol written
// after them.
type StereoDirections map[int]string

// Get returns the direction symbol of a bond, or "".
func (d StereoDirections) Get(bond int) string {
	if d == nil {
		return ""
	}
	return d[bond]
}

func invertDirection(dir string) string {
	if dir == dirDown {
		return dirUp
	}
	return dirDown
}

// initialDirections returns the symbol pair for the two key neighbour bonds
// of a stereo double bond: the same symbol for even parity, opposite ones
// otherwise.
func initialDirections(parity mtypes.StereoParity) [2]string {
	if parity == mtypes.ParityEven {
		return [2]string{dirUp, dirUp}
	}
	return [2]string{dirUp, dirDown}
}

// ResolveStereoBonds assigns direction symbols to the key neighbour bonds of
// every double bond with a defined parity, visiting bonds in connection-table
// order.  Key bonds already marked by an earlier double bond are kept; the
// still unmarked key bond is inverted when exactly one kept symbol disagrees
// with the freshly computed pair, and the double bond is left unmarked when
// both disagree.  The result is nil when bond stereo is ignored or no double
// bond carries a parity.
//
// Resolution is greedy, so in fused systems the bond order decides which
// double bond wins a shared key bond.
func ResolveStereoBonds(s *molecule.Structure, opts Options) StereoDirections {
	if s.IsEmpty() || opts.ignoreStereoBond() {
		return nil
	}
	dirs := make(StereoDirections)
	stereoBonds := 0
	for _, b := range s.Bonds {
		if !b.Parity.IsDefined() {
			continue
		}
		stereoBonds++
		k1, k2, ok := molecule.KeyNeighborBonds(s, b)
		if !ok {
			continue
		}
		refs := [2]*molecule.Bond{k1, k2}
		want := initialDirections(b.Parity)

		var marked [2]bool
		inverts := 0
		for i, ref := range refs {
			stored, has := dirs[ref.Index]
			if !has {
				continue
			}
			marked[i] = true
			if stored != want[i] {
				inverts++
			}
		}
		if inverts >= 2 {
			continue
		}
		for i, ref := range refs {
			if marked[i] {
				continue
			}
			dir := want[i]
			if inverts == 1 {
				dir = invertDirection(dir)
			}
			dirs[ref.Index] = dir
		}
	}
	if stereoBonds == 0 {
		return nil
	}
	return dirs
}

//Personal.AI order the ending
