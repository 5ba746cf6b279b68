package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category is an admin-managed product grouping. Names are unique ignoring case.
type Category struct {
	ID   NumericID `json:"id"`
	Name string    `json:"name"`

	extra fields
}

func (c *Category) UnmarshalJSON(b []byte) error {
	f, err := splitObject(b)
	if err != nil {
		return err
	}
	*c = Category{}
	if err := f.require("id", &c.ID); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	f.text("name", &c.Name)
	c.extra = f.clone()
	return nil
}

func (c Category) MarshalJSON() ([]byte, error) {
	w := newObjectWriter(c.extra)
	w.put("id", c.ID)
	w.put("name", c.Name)
	return w.finish()
}

// CategoryCount is the list view of a category.
type CategoryCount struct {
	ID    NumericID `json:"id"`
	Name  string    `json:"name"`
	Count int       `json:"count"`
}

// User is a back-office account. Password holds a bcrypt hash, or plaintext in
// documents that predate hashing.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`

	extra fields
}

func (u *User) UnmarshalJSON(b []byte) error {
	f, err := splitObject(b)
	if err != nil {
		return err
	}
	*u = User{}
	f.text("username", &u.Username)
	f.text("password", &u.Password)
	f.text("name", &u.Name)
	f.text("role", &u.Role)
	u.extra = f.clone()
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	w := newObjectWriter(u.extra)
	w.put("username", u.Username)
	w.put("password", u.Password)
	w.put("name", u.Name)
	w.put("role", u.Role)
	return w.finish()
}

// UserSummary is the only user projection sent to clients.
type UserSummary struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (u User) Summary() UserSummary { return UserSummary{Name: u.Name, Role: u.Role} }

// Stats is computed on read. The persisted copy is refreshed on every save
// for older tooling and is never read back.
type Stats struct {
	Dealers       int `json:"dealers"`
	PendingOrders int `json:"pendingOrders"`
	MonthLeads    int `json:"monthLeads"`
	Products      int `json:"products"`

	extra fields
}

func (st *Stats) UnmarshalJSON(b []byte) error {
	f, err := splitObject(b)
	if err != nil {
		return err
	}
	*st = Stats{}
	f.integer("dealers", &st.Dealers)
	f.integer("pendingOrders", &st.PendingOrders)
	f.integer("monthLeads", &st.MonthLeads)
	f.integer("products", &st.Products)
	st.extra = f.clone()
	return nil
}

func (st Stats) MarshalJSON() ([]byte, error) {
	w := newObjectWriter(st.extra)
	w.put("dealers", st.Dealers)
	w.put("pendingOrders", st.PendingOrders)
	w.put("monthLeads", st.MonthLeads)
	w.put("products", st.Products)
	return w.finish()
}

// Document is the whole persisted state.
//
// Decoding never fails on a single bad record: a record that cannot be read
// (a product whose id is not a number, say) is kept verbatim and written back
// after the readable ones. Unknown top-level members are kept too.
type Document struct {
	Users      []User            `json:"users"`
	Products   []Product         `json:"products"`
	Leads      []Lead            `json:"leads"`
	Categories []Category        `json:"categories"`
	Warranties []WarrantyRequest `json:"warranties"`
	Stats      Stats             `json:"stats"`

	unreadable map[string][]json.RawMessage
	problems   []string
	extra      fields
}

// Problems describes the records kept verbatim because they could not be decoded.
func (d *Document) Problems() []string { return d.problems }

func (d *Document) UnmarshalJSON(b []byte) error {
	f, err := splitObject(b)
	if err != nil {
		return err
	}
	*d = Document{}
	decodeRecords(d, f, "users", &d.Users)
	decodeRecords(d, f, "products", &d.Products)
	decodeRecords(d, f, "leads", &d.Leads)
	decodeRecords(d, f, "categories", &d.Categories)
	decodeRecords(d, f, "warranties", &d.Warranties)
	// stats are derived, so an unreadable copy is simply replaced
	f.decode("stats", &d.Stats)
	delete(f, "stats")
	d.extra = f.clone()
	return nil
}

// decodeRecords reads f[key] one record at a time into dst.
func decodeRecords[T any](d *Document, f fields, key string, dst *[]T) {
	raw, ok := f[key]
	if !ok {
		return
	}
	if isNull(raw) {
		delete(f, key)
		return
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		// not a list; left in f and written back as found
		d.problems = append(d.problems, fmt.Sprintf("%s: not a list", key))
		return
	}
	delete(f, key)
	out := make([]T, 0, len(elems))
	for i, e := range elems {
		var rec T
		if err := json.Unmarshal(e, &rec); err != nil {
			if d.unreadable == nil {
				d.unreadable = make(map[string][]json.RawMessage)
			}
			d.unreadable[key] = append(d.unreadable[key], e)
			d.problems = append(d.problems, fmt.Sprintf("%s[%d]: %v", key, i, err))
			continue
		}
		out = append(out, rec)
	}
	*dst = out
}

func (d Document) MarshalJSON() ([]byte, error) {
	w := newObjectWriter(d.extra)
	for _, c := range []struct {
		key  string
		list any
		n    int
	}{
		{"users", d.Users, len(d.Users)},
		{"products", d.Products, len(d.Products)},
		{"leads", d.Leads, len(d.Leads)},
		{"categories", d.Categories, len(d.Categories)},
		{"warranties", d.Warranties, len(d.Warranties)},
	} {
		// a member that was not a list stays as found until records are added
		if _, kept := d.extra[c.key]; kept && c.n == 0 {
			continue
		}
		w.put(c.key, withUnreadable(c.list, d.unreadable[c.key]))
	}
	w.put("stats", d.Stats)
	return w.finish()
}

// withUnreadable appends the verbatim records after the decoded ones.
func withUnreadable(list any, kept []json.RawMessage) any {
	if len(kept) == 0 {
		return list
	}
	b, err := json.Marshal(list)
	if err != nil {
		return list
	}
	var out []json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return list
	}
	return append(out, kept...)
}

// ComputeStats derives the stats block from the collections.
func (d *Document) ComputeStats(now time.Time) Stats {
	st := Stats{Products: len(d.Products)}
	dealers := map[string]bool{}
	for _, l := range d.Leads {
		if sameMonth(l.Date.Time, now) {
			st.MonthLeads++
		}
		switch l.Status {
		case LeadNew:
			st.PendingOrders++
		case LeadSold:
			if email := strings.ToLower(strings.TrimSpace(l.Contact.Email)); email != "" {
				dealers[email] = true
			}
		}
	}
	st.Dealers = len(dealers)
	return st
}

// RefreshStats overwrites the persisted stats with computed values.
func (d *Document) RefreshStats(now time.Time) {
	st := d.ComputeStats(now)
	d.Stats.Dealers = st.Dealers
	d.Stats.PendingOrders = st.PendingOrders
	d.Stats.MonthLeads = st.MonthLeads
	d.Stats.Products = st.Products
}

func sameMonth(t, ref time.Time) bool {
	if t.IsZero() {
		return false
	}
	t = t.In(ref.Location())
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}

// NewDocument returns an empty document with all collections allocated.
func NewDocument() *Document {
	d := &Document{}
	d.Normalize()
	return d
}

// Normalize replaces nil collections with empty ones so they serialize as [].
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Leads == nil {
		d.Leads = []Lead{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	if d.Warranties == nil {
		d.Warranties = []WarrantyRequest{}
	}
}

func (d *Document) ProductIndex(id NumericID) int {
	for i := range d.Products {
		if d.Products[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) LeadIndex(id LeadID) int {
	for i := range d.Leads {
		if d.Leads[i].ID.Equal(id) {
			return i
		}
	}
	return -1
}

func (d *Document) WarrantyIndex(id NumericID) int {
	for i := range d.Warranties {
		if d.Warranties[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) CategoryIndex(id NumericID) int {
	for i := range d.Categories {
		if d.Categories[i].ID == id {
			return i
		}
	}
	return -1
}

// FindUser returns the user with the given username.
func (d *Document) FindUser(username string) (User, bool) {
	for _, u := range d.Users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}
