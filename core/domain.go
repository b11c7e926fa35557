package core

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Magic tags identify in-memory objects cheaply so that misuse (passing a
// non-domain pointer across the ABI) is detected without a type system.
const (
	DomainMagic  uint32 = 0xA71A5D0C
	WitnessMagic uint32 = 0xA71A5117
)

// DomainState is the Domain lifecycle's state ordinal. States are totally
// ordered and monotonic except that Destroyed is absorbing: once a domain
// is destroyed, Attach, Verify, Commit and the budget operations fail with
// DomainDestroyed, and a repeated Destroy is a no-op.
type DomainState int32

const (
	Created DomainState = iota
	Attached
	Verified
	Committed
	Destroyed
)

func (s DomainState) String() string {
	switch s {
	case Created:
		return "Created"
	case Attached:
		return "Attached"
	case Verified:
		return "Verified"
	case Committed:
		return "Committed"
	case Destroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

var domainIDCounter uint64 // process-wide monotonic counter

// Domain is the central L2 entity binding a caller-owned byte buffer to a
// budget and, eventually, a Witness. It is safe to share across goroutines:
// state and budget transition via CAS; base and conservationSum are only set
// under the single-writer Attach call.
type Domain struct {
	magic uint32
	id    uint64

	state  int32  // atomic DomainState
	budget uint32 // atomic, modular in 0..R96Classes

	base            []byte // caller-owned; Domain never reallocates or retains beyond Destroy
	conservationSum uint32 // attach-time baseline raw byte sum, used for drift detection
	witness         *Witness

	log *logrus.Entry
}

// DomainCreate allocates a new domain identity with the given budget class.
// bytes is advisory sizing information checked for non-zero; the domain
// does not allocate it here — it has no buffer yet, only a budget and
// identity, until Attach binds one.
func DomainCreate(bytes int, budgetClass uint8) (*Domain, error) {
	if bytes <= 0 {
		return nil, newErr(InvalidArgument, "DomainCreate")
	}
	if int(budgetClass) >= R96Classes {
		return nil, newErr(InvalidArgument, "DomainCreate")
	}
	id := atomic.AddUint64(&domainIDCounter, 1)
	d := &Domain{
		magic:  DomainMagic,
		id:     id,
		state:  int32(Created),
		budget: uint32(budgetClass),
		log:    logrus.WithFields(logrus.Fields{"domain": id}),
	}
	d.log.Debug("domain created")
	Metrics().domainsCreated.Inc()
	return d, nil
}

// State returns the Domain's current lifecycle state.
func (d *Domain) State() DomainState {
	return DomainState(atomic.LoadInt32(&d.state))
}

func (d *Domain) casState(from, to DomainState) bool {
	return atomic.CompareAndSwapInt32(&d.state, int32(from), int32(to))
}

func (d *Domain) checkMagic(op string) error {
	if d.magic != DomainMagic {
		return newErr(InvalidArgument, op)
	}
	if d.State() == Destroyed {
		return newErr(DomainDestroyed, op)
	}
	return nil
}

// Attach binds base as the Domain's attached buffer. base is not owned by
// the Domain; the caller guarantees its lifetime exceeds the Domain's
// Attached/Verified/Committed states.
func (d *Domain) Attach(base []byte) error {
	if err := d.checkMagic("Attach"); err != nil {
		return err
	}
	if base == nil || len(base) == 0 {
		return newErr(InvalidArgument, "Attach")
	}
	if d.State() != Created {
		return newErr(InvalidState, "Attach")
	}
	sum := ConservedSum(base)
	if !d.casState(Created, Attached) {
		return newErr(InvalidState, "Attach")
	}
	d.base = base
	atomic.StoreUint32(&d.conservationSum, sum)
	d.log.WithField("len", len(base)).Debug("domain attached")
	return nil
}

// Verify checks that the attached buffer is still conserved and that its sum
// has not drifted from the attach-time baseline.
func (d *Domain) Verify() (bool, error) {
	if err := d.checkMagic("Verify"); err != nil {
		return false, err
	}
	st := d.State()
	if st != Attached && st != Verified && st != Committed {
		return false, newErr(InvalidState, "Verify")
	}
	sum := ConservedSum(d.base)
	if sum != atomic.LoadUint32(&d.conservationSum) {
		d.log.WithFields(logrus.Fields{"got": sum, "want": d.conservationSum}).Warn("conservation drift")
		Metrics().conservationViolations.Inc()
		return false, newErr(ConservationViolation, "Verify")
	}
	if sum%ConservationMod != 0 {
		d.log.Warn("attached buffer is not conserved")
		Metrics().conservationViolations.Inc()
		return false, newErr(ConservationViolation, "Verify")
	}
	if d.witness != nil {
		ok, err := WitnessVerify(d.witness, d.base)
		if err != nil || !ok {
			Metrics().conservationViolations.Inc()
			return false, wrapErr(ConservationViolation, "Verify", err)
		}
	}
	if st == Attached {
		d.casState(Attached, Verified)
	}
	return true, nil
}

// Commit verifies the domain, generates a Witness if one does not already
// exist, and transitions to Committed.
func (d *Domain) Commit() error {
	if err := d.checkMagic("Commit"); err != nil {
		return err
	}
	ok, err := d.Verify()
	if err != nil || !ok {
		return err
	}
	if d.witness == nil {
		w, err := WitnessGenerate(d.base, DefaultWitnessAlgorithm())
		if err != nil {
			return wrapErr(OutOfMemory, "Commit", err)
		}
		d.witness = w
	}
	st := d.State()
	if st != Attached && st != Verified {
		return newErr(InvalidState, "Commit")
	}
	if !d.casState(st, Committed) {
		return newErr(InvalidState, "Commit")
	}
	d.log.WithField("resonance_class", d.witness.ResonanceClass).Info("domain committed")
	Metrics().domainsCommitted.Inc()
	return nil
}

// Witness returns the Domain's stored witness, if any.
func (d *Domain) Witness() *Witness { return d.witness }

// ID returns the Domain's monotonic identity.
func (d *Domain) ID() uint64 { return d.id }

// Destroy releases the Domain's witness and buffer references and transitions to
// Destroyed. Idempotent: destroying an already-destroyed Domain is a no-op.
func (d *Domain) Destroy() {
	for {
		st := d.State()
		if st == Destroyed {
			return
		}
		if d.casState(st, Destroyed) {
			d.witness = nil
			d.base = nil
			d.log.Debug("domain destroyed")
			return
		}
	}
}
