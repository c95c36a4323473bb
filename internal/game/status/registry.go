package status

// Entry is one duration counter. Mask is usually a single flag but may span a
// group when the caller keys the duration by one.
type Entry struct {
	Mask     Flags
	Duration int
}

// Registry is the ordered duration counter list owned by one combat unit.
// At most one entry exists per mask. It is not safe for concurrent use.
type Registry struct {
	entries []Entry
}

// Duration returns the remaining duration of the first entry overlapping mask,
// or 0 when none does.
func (r *Registry) Duration(mask Flags) int {
	for _, e := range r.entries {
		if e.Mask&mask != 0 {
			return e.Duration
		}
	}
	return 0
}

// Contains reports whether an entry overlaps mask.
func (r *Registry) Contains(mask Flags) bool {
	for _, e := range r.entries {
		if e.Mask&mask != 0 {
			return true
		}
	}
	return false
}

// Set replaces the duration of the entry keyed by mask or appends a new one.
//
// Precondition: mask != 0; duration >= 0.
// Postcondition: Duration(mask) == duration.
func (r *Registry) Set(mask Flags, duration int) {
	if mask == 0 {
		return
	}
	if duration < 0 {
		duration = 0
	}
	for i := range r.entries {
		if r.entries[i].Mask == mask {
			r.entries[i].Duration = duration
			return
		}
	}
	r.entries = append(r.entries, Entry{Mask: mask, Duration: duration})
}

// Remove deletes every entry overlapping mask, so a group mask such as
// BadMagic clears all of its members. Removal swaps with the last entry.
//
// Postcondition: Contains(mask) is false.
func (r *Registry) Remove(mask Flags) {
	for i := 0; i < len(r.entries); {
		if r.entries[i].Mask&mask == 0 {
			i++
			continue
		}
		last := len(r.entries) - 1
		r.entries[i] = r.entries[last]
		r.entries = r.entries[:last]
	}
}

// Decrement subtracts one from every positive duration.
//
// Postcondition: no duration is negative.
func (r *Registry) Decrement() {
	for i := range r.entries {
		if r.entries[i].Duration > 0 {
			r.entries[i].Duration--
		}
	}
}

// NextExpired returns the mask of the first entry whose duration reached zero,
// or 0 when none has. The entry is not removed; callers remove it and call
// again until 0 is returned.
func (r *Registry) NextExpired() Flags {
	for _, e := range r.entries {
		if e.Duration == 0 {
			return e.Mask
		}
	}
	return 0
}

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

// Entries returns a copy of the entries in registry order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Masks returns the union of every entry mask.
func (r *Registry) Masks() Flags {
	var all Flags
	for _, e := range r.entries {
		all |= e.Mask
	}
	return all
}

// Reset drops every entry.
func (r *Registry) Reset() { r.entries = r.entries[:0] }
