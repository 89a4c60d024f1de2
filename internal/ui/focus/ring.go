package focus

// Ring tracks which form element has focus. At most one element is active;
// -1 means nothing is focused.
type Ring struct {
	ids    []string
	active int
}

// NewRing creates a ring with the first id focused.
func NewRing(ids ...string) *Ring {
	r := &Ring{ids: ids, active: -1}
	if len(ids) > 0 {
		r.active = 0
	}
	return r
}

// Active returns the focused id, or "" when nothing has focus.
func (r *Ring) Active() string {
	if r.active < 0 || r.active >= len(r.ids) {
		return ""
	}
	return r.ids[r.active]
}

// Is reports whether id has focus.
func (r *Ring) Is(id string) bool {
	return id != "" && r.Active() == id
}

// Within reports whether the focused element is one of ids.
func (r *Ring) Within(ids ...string) bool {
	active := r.Active()
	if active == "" {
		return false
	}
	for _, id := range ids {
		if id == active {
			return true
		}
	}
	return false
}

// Next moves focus forward, wrapping at the end. From no focus it lands on
// the first element.
func (r *Ring) Next() string {
	if len(r.ids) == 0 {
		return ""
	}
	r.active = (r.active + 1) % len(r.ids)
	return r.Active()
}

// Prev moves focus backward, wrapping at the start.
func (r *Ring) Prev() string {
	if len(r.ids) == 0 {
		return ""
	}
	if r.active <= 0 {
		r.active = len(r.ids) - 1
	} else {
		r.active--
	}
	return r.Active()
}

// Set focuses id. Unknown ids leave focus unchanged.
func (r *Ring) Set(id string) bool {
	for i, known := range r.ids {
		if known == id {
			r.active = i
			return true
		}
	}
	return false
}

// Clear removes focus from every element.
func (r *Ring) Clear() {
	r.active = -1
}

// IDs returns the ring order.
func (r *Ring) IDs() []string {
	return r.ids
}
