package person

// Viewer identifies who is looking at a person record. Field visibility
// depends on whether the viewer is the record's owner or holds an
// administrative role.
type Viewer struct {
	PersonID int64
	Admin    bool
}

func (v Viewer) canViewPII(p Person) bool {
	return v.Admin || v.PersonID == p.ID
}

// View returns the serializable fields of a person record the viewer is
// allowed to see. Identity and status fields are always visible; email and
// personal info require the viewer to be the person themselves or an admin.
func View(p Person, v Viewer) map[string]any {
	out := map[string]any{
		"id":         p.ID,
		"callsign":   p.Callsign,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"status":     p.Status,
	}

	if v.canViewPII(p) {
		out["email"] = p.Email
		out["city"] = p.City
		out["state"] = p.State
		out["country"] = p.Country
	}

	if v.Admin {
		out["employee_id"] = p.EmployeeID
		out["lms_id"] = p.LMSID
	}

	return out
}
