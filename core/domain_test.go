package core

import (
	"errors"
	"testing"
)

func TestDomainFullLifecycle(t *testing.T) {
	d, err := DomainCreate(AtlasSize, 50)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, AtlasSize) // all zero: sum == 0, conserved

	if err := d.Attach(buf); err != nil {
		t.Fatalf("attach: %v", err)
	}
	ok, err := d.Verify()
	if err != nil || !ok {
		t.Fatalf("verify: ok=%v err=%v", ok, err)
	}
	if err := d.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if d.State() != Committed {
		t.Fatalf("state = %v, want Committed", d.State())
	}
	w := d.Witness()
	if w == nil {
		t.Fatal("expected a witness after commit")
	}
	if w.ResonanceClass != 0 {
		t.Fatalf("resonance class = %d, want 0", w.ResonanceClass)
	}
	d.Destroy()
	if d.State() != Destroyed {
		t.Fatalf("state = %v, want Destroyed", d.State())
	}
}

func TestDomainVerifyDetectsConservationViolation(t *testing.T) {
	d, err := DomainCreate(AtlasSize, 50)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, AtlasSize)
	if err := d.Attach(buf); err != nil {
		t.Fatal(err)
	}
	buf[0] ^= 0x01

	ok, err := d.Verify()
	if ok {
		t.Fatal("expected verify to fail")
	}
	if !errors.Is(err, ConservationViolation) {
		t.Fatalf("expected ConservationViolation, got %v", err)
	}
	if d.State() != Attached {
		t.Fatalf("state = %v, want Attached", d.State())
	}
}

func TestDomainCreateRejectsInvalidArgs(t *testing.T) {
	if _, err := DomainCreate(0, 10); err == nil {
		t.Fatal("expected error for zero bytes")
	}
	if _, err := DomainCreate(10, R96Classes); err == nil {
		t.Fatal("expected error for budget_class >= R96Classes")
	}
}

func TestDomainAttachRequiresCreatedState(t *testing.T) {
	d, _ := DomainCreate(AtlasSize, 10)
	buf := make([]byte, AtlasSize)
	if err := d.Attach(buf); err != nil {
		t.Fatal(err)
	}
	if err := d.Attach(buf); !errors.Is(err, InvalidState) {
		t.Fatalf("expected InvalidState on double attach, got %v", err)
	}
}

func TestDomainDestroyIsIdempotentAndTerminal(t *testing.T) {
	d, _ := DomainCreate(AtlasSize, 10)
	d.Destroy()
	d.Destroy() // must not panic or change anything
	if d.State() != Destroyed {
		t.Fatal("state must remain Destroyed")
	}
	buf := make([]byte, AtlasSize)
	if err := d.Attach(buf); !errors.Is(err, DomainDestroyed) {
		t.Fatalf("expected DomainDestroyed after destroy, got %v", err)
	}
}

func TestDomainCommitWithoutAttachFails(t *testing.T) {
	d, _ := DomainCreate(AtlasSize, 10)
	if err := d.Commit(); err == nil {
		t.Fatal("expected commit to fail before attach")
	}
}
