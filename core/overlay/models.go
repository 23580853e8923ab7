package overlay

// Namespace separates independent overlay sets.
type Namespace string

const (
	Marks      Namespace = "marks"
	Attendance Namespace = "attendance"
)

// Entry is a partial record of one subject. Unset fields are nil.
type Entry struct {
	Internal1 *int `json:"internal1,omitempty"`
	Internal2 *int `json:"internal2,omitempty"`
	Internal3 *int `json:"internal3,omitempty"`
	Attended  *int `json:"attended,omitempty"`
	Held      *int `json:"held,omitempty"`
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Merge returns e with every field set in patch overwritten.
func (e Entry) Merge(patch Entry) Entry {
	if patch.Internal1 != nil {
		e.Internal1 = Int(*patch.Internal1)
	}
	if patch.Internal2 != nil {
		e.Internal2 = Int(*patch.Internal2)
	}
	if patch.Internal3 != nil {
		e.Internal3 = Int(*patch.Internal3)
	}
	if patch.Attended != nil {
		e.Attended = Int(*patch.Attended)
	}
	if patch.Held != nil {
		e.Held = Int(*patch.Held)
	}
	return e
}

func (e Entry) IsZero() bool {
	return e.Internal1 == nil && e.Internal2 == nil && e.Internal3 == nil && e.Attended == nil && e.Held == nil
}

// CoveredBy reports whether every field set in e holds the same value in truth.
func (e Entry) CoveredBy(truth Entry) bool {
	return sameOrUnset(e.Internal1, truth.Internal1) &&
		sameOrUnset(e.Internal2, truth.Internal2) &&
		sameOrUnset(e.Internal3, truth.Internal3) &&
		sameOrUnset(e.Attended, truth.Attended) &&
		sameOrUnset(e.Held, truth.Held)
}

func sameOrUnset(o, t *int) bool {
	if o == nil {
		return true
	}
	return t != nil && *o == *t
}

// Merge overlays every entry of over onto truth, field by field.
// Subjects present in only one side are kept.
func Merge(truth, over map[string]Entry) map[string]Entry {
	merged := make(map[string]Entry, len(truth)+len(over))
	for sub, e := range truth {
		merged[sub] = e
	}
	for sub, e := range over {
		merged[sub] = merged[sub].Merge(e)
	}
	return merged
}
