// Package models defines the domain types for dosebell.
package models

// Record is one recipient's reminder file.
type Record struct {
	Name      string  `json:"name"`
	Phone     string  `json:"phone,omitempty"`
	DOB       string  `json:"dob,omitempty"`
	Reminders []Entry `json:"reminders"`

	// Source is the file the record was read from.
	Source string `json:"-"`
}

// Entry is a single dated reminder.
type Entry struct {
	Date   string `json:"date"`
	Tablet string `json:"tablet"`
	Time   string `json:"time"`
	Notes  string `json:"notes"`
}

// DueOn returns the first entry dated key. Later duplicates are ignored.
func (r *Record) DueOn(key string) (Entry, bool) {
	for _, e := range r.Reminders {
		if e.Date == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Match pairs a record's identity with the entry due today.
type Match struct {
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	DOB      string `json:"dob,omitempty"`
	Reminder Entry  `json:"reminder"`
	Source   string `json:"source"`
}

// Upcoming is an entry due today or later, tagged with its owner.
type Upcoming struct {
	Entry
	Name   string `json:"name"`
	Source string `json:"source"`
}

// FileMetadata is a lightweight representation returned by list operations.
type FileMetadata struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}
