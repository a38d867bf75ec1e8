// Package idset has helpers for the id arrays that link employees and tasks
// from both sides. All functions treat slices as sets and never mutate their
// arguments.
package idset

// Contains reports whether id is present in ids.
func Contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Add returns ids with id appended if not already present.
func Add(ids []int64, id int64) []int64 {
	if Contains(ids, id) {
		return ids
	}
	out := make([]int64, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}

// Remove returns ids without id.
func Remove(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Diff computes the symmetric difference between the old and new sets:
// added holds ids present only in next, removed ids present only in prev.
func Diff(prev, next []int64) (added, removed []int64) {
	for _, id := range next {
		if !Contains(prev, id) {
			added = append(added, id)
		}
	}
	for _, id := range prev {
		if !Contains(next, id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}
