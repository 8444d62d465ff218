package metrics

import "testing"

// deriveFromSynergy is a stand-in rule: ARMED at >= 0.9, else LOCKED.
func deriveFromSynergy(s Snapshot) LockState {
	if s.SynergyScore >= 0.9 {
		return LockArmed
	}
	return LockLocked
}

func TestStoreApplyRederivesLock(t *testing.T) {
	st := NewStore(Default(), deriveFromSynergy)

	out := st.Apply(Patch{SynergyScore: Ptr(0.95)})

	if out.LockState != LockArmed {
		t.Fatalf("expected ARMED after commit, got %s", out.LockState)
	}
}

func TestStoreLockOnlyPatchSkipsDerivation(t *testing.T) {
	st := NewStore(Default(), deriveFromSynergy)

	// A lock-only write-back must be taken at face value, not re-derived,
	// otherwise derivation loops forever.
	out := st.Apply(Patch{LockState: Ptr(LockDeployed)})

	if out.LockState != LockDeployed {
		t.Fatalf("lock-only patch should stick, got %s", out.LockState)
	}
}

func TestStoreReplaceRederivesLock(t *testing.T) {
	st := NewStore(Default(), deriveFromSynergy)

	remote := Default()
	remote.SynergyScore = 0.95
	remote.LockState = LockLocked // stale remote value

	out := st.Replace(remote)

	if out.LockState != LockArmed {
		t.Fatalf("replace must re-derive, got %s", out.LockState)
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	st := NewStore(Default(), nil)

	a := st.Get()
	a.SystemLogs[0].Text = "tampered"
	a.SynergyScore = -1

	b := st.Get()
	if b.SystemLogs[0].Text == "tampered" {
		t.Fatal("Get must return an isolated copy of the log ring")
	}
	if b.SynergyScore != 0.72 {
		t.Fatalf("Get must return an isolated copy, got synergy %v", b.SynergyScore)
	}
}
