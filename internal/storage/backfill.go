package storage

// rowFix is a deferred write produced by the repair pass. Index is the row in the
// backend's own addressing (array offset for the file, sheet row number for the
// worksheet).
type rowFix struct {
	Index       int
	CandidateID string
	Status      Status
	SetID       bool
	SetStatus   bool
}

// repairIdentity fills in a missing identifier or status. It reports what had to change
// so callers can queue the write-back instead of mutating storage mid-scan.
func repairIdentity(index int, candidateID, status string) (string, Status, *rowFix) {
	fix := rowFix{Index: index}

	if candidateID == "" {
		candidateID = NewCandidateID()
		fix.SetID = true
	}
	st, err := ParseStatus(status)
	if err != nil {
		st = StatusNew
		fix.SetStatus = true
	}

	if !fix.SetID && !fix.SetStatus {
		return candidateID, st, nil
	}
	fix.CandidateID = candidateID
	fix.Status = st
	return candidateID, st, &fix
}
