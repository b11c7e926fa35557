package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WitnessFragment is one link of a WitnessChain: the state hashes it
// bridges, the operation that produced it, its own local witness, and the
// budget the operation consumed.
type WitnessFragment struct {
	PreHash        [32]byte
	PostHash       [32]byte
	OpTag          string
	LocalDigest    *Witness
	BudgetConsumed uint8
}

// VerifyChain walks chain and confirms: the first fragment's pre-hash
// matches initial's digest, the last fragment's post-hash matches final's
// digest, every adjacent pair links post[i] == pre[i+1], and total budget
// consumption does not exceed ceiling. The adjacency checks are independent
// of one another and are fanned out with errgroup; this is still an O(n)
// scan overall, just a parallel one.
func VerifyChain(chain []WitnessFragment, initial, final *Witness, budgetCeiling uint8) (bool, error) {
	if initial == nil || final == nil {
		return false, newErr(InvalidArgument, "VerifyChain")
	}
	if len(chain) == 0 {
		return initial.Digest == final.Digest, nil
	}
	if chain[0].PreHash != initial.Digest {
		return false, nil
	}
	if chain[len(chain)-1].PostHash != final.Digest {
		return false, nil
	}

	g, _ := errgroup.WithContext(context.Background())
	mismatch := make([]bool, len(chain)-1)
	for i := 0; i < len(chain)-1; i++ {
		i := i
		g.Go(func() error {
			mismatch[i] = chain[i].PostHash != chain[i+1].PreHash
			return nil
		})
	}
	_ = g.Wait()
	for _, bad := range mismatch {
		if bad {
			return false, nil
		}
	}

	var total uint32
	for _, f := range chain {
		total += uint32(f.BudgetConsumed)
	}
	if total > uint32(budgetCeiling) {
		return false, newErr(BudgetInsufficient, "VerifyChain")
	}
	return true, nil
}
