package core

import (
	"runtime"
	"sync/atomic"

	"atlas-substrate/pkg/config"
)

// Budget returns the Domain's current budget level, 0..R96Classes.
func (d *Domain) Budget() uint8 {
	return uint8(atomic.LoadUint32(&d.budget))
}

// casSpinRetries bounds how many times a budget CAS loop spins before
// yielding the goroutine.
func casSpinRetries() int {
	n := config.AppConfig.Conservation.CASSpinRetries
	if n <= 0 {
		return 64
	}
	return n
}

// BudgetAlloc atomically deducts amount from the Domain's budget under the
// RL-96 semiring: current := (current - amount) mod R96Classes. Fails with
// BudgetInsufficient if current < amount.
func (d *Domain) BudgetAlloc(amount uint8) error {
	if err := d.checkMagic("BudgetAlloc"); err != nil {
		return err
	}
	if int(amount) >= R96Classes {
		return newErr(InvalidArgument, "BudgetAlloc")
	}
	spins := casSpinRetries()
	for i := 0; ; i++ {
		cur := atomic.LoadUint32(&d.budget)
		if cur < uint32(amount) {
			return newErr(BudgetInsufficient, "BudgetAlloc")
		}
		next := cur - uint32(amount)
		if atomic.CompareAndSwapUint32(&d.budget, cur, next) {
			return nil
		}
		if i >= spins {
			runtime.Gosched()
			i = 0
		}
	}
}

// BudgetRelease atomically credits amount back to the Domain's budget:
// current := (current + amount) mod R96Classes.
func (d *Domain) BudgetRelease(amount uint8) error {
	if err := d.checkMagic("BudgetRelease"); err != nil {
		return err
	}
	if int(amount) >= R96Classes {
		return newErr(InvalidArgument, "BudgetRelease")
	}
	spins := casSpinRetries()
	for i := 0; ; i++ {
		cur := atomic.LoadUint32(&d.budget)
		next := (cur + uint32(amount)) % R96Classes
		if atomic.CompareAndSwapUint32(&d.budget, cur, next) {
			return nil
		}
		if i >= spins {
			runtime.Gosched()
			i = 0
		}
	}
}

// BudgetMul computes the RL-96 semiring product (a*b) mod R96Classes. This
// is a pure function, not a Domain method, since multiplication does not
// consume or release a Domain's live budget by itself. No operation in this
// package calls it; manifold-layer operations charge a fixed manifoldOpCost.
func BudgetMul(a, b uint8) uint8 {
	return uint8((int(a) * int(b)) % R96Classes)
}

// BudgetInv returns the modular multiplicative inverse of a under
// R96Classes, if one exists (i.e. gcd(a, R96Classes) == 1).
func BudgetInv(a uint8) (uint8, error) {
	a32 := int32(a) % R96Classes
	if a32 < 0 {
		a32 += R96Classes
	}
	g, x, _ := extendedGCD(a32, R96Classes)
	if g != 1 {
		return 0, newErr(InvalidArgument, "BudgetInv")
	}
	x %= R96Classes
	if x < 0 {
		x += R96Classes
	}
	return uint8(x), nil
}

// extendedGCD returns (g, x, y) such that a*x + b*y == g == gcd(a, b).
func extendedGCD(a, b int32) (g, x, y int32) {
	if a == 0 {
		return b, 0, 1
	}
	g, x1, y1 := extendedGCD(b%a, a)
	return g, y1 - (b/a)*x1, x1
}
