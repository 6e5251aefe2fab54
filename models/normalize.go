package models

import (
	"encoding/json"
	"strings"
)

// knownFields are the top-level keys owned by this version of the app.
// Anything else read from the store is carried through untouched.
var knownFields = map[string]bool{
	"users":      true,
	"categories": true,
	"tasks":      true,
	"nextTaskId": true,
}

// UnmarshalJSON decodes a document tolerantly: a known field whose value has
// the wrong shape is treated as absent (Normalize seeds it later), and
// unknown fields are retained for passthrough.
func (d *AppDocument) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = AppDocument{}
	for key, value := range raw {
		switch key {
		case "users":
			_ = json.Unmarshal(value, &d.Users)
		case "categories":
			_ = json.Unmarshal(value, &d.Categories)
		case "tasks":
			_ = json.Unmarshal(value, &d.Tasks)
		case "nextTaskId":
			_ = json.Unmarshal(value, &d.NextTaskID)
		default:
			if d.extra == nil {
				d.extra = map[string]json.RawMessage{}
			}
			d.extra[key] = value
		}
	}
	return nil
}

// MarshalJSON writes the known fields plus any retained unknown fields.
func (d *AppDocument) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.extra)+4)
	for key, value := range d.extra {
		if !knownFields[key] {
			out[key] = value
		}
	}
	out["users"] = d.Users
	out["categories"] = d.Categories
	out["tasks"] = d.Tasks
	out["nextTaskId"] = d.NextTaskID
	return json.Marshal(out)
}

// DecodeDocument parses raw document bytes. Empty input yields a fresh seed
// document; invalid JSON is reported to the caller (the local store reseeds,
// the remote store never produces it). The result is always normalized.
func DecodeDocument(data []byte) (*AppDocument, error) {
	if len(data) == 0 {
		return SeedDocument(), nil
	}
	doc := &AppDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return Normalize(doc), nil
}

// EncodeDocument normalizes and serializes a document for storage.
func EncodeDocument(doc *AppDocument) ([]byte, error) {
	return json.Marshal(Normalize(doc))
}

// Normalize repairs a partial or malformed document into a valid one:
// missing users/categories get the seed defaults, missing tasks an empty
// slice, nextTaskId is made consistent with existing task ids. Unknown
// fields are left alone. Idempotent and total.
func Normalize(doc *AppDocument) *AppDocument {
	if doc == nil {
		return SeedDocument()
	}

	if doc.Users == nil {
		doc.Users = SeedUsers()
	}
	normalized := make(map[string]*User, len(doc.Users))
	for name, u := range doc.Users {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || u == nil {
			continue
		}
		if u.Username == "" {
			u.Username = key
		}
		if u.Role != RoleAdmin && u.Role != RoleBasic {
			u.Role = RoleBasic
		}
		if u.Wallet == nil {
			u.Wallet = &Wallet{}
		}
		if u.Wallet.Incomes == nil {
			u.Wallet.Incomes = []Movement{}
		}
		if u.Wallet.Expenses == nil {
			u.Wallet.Expenses = []Movement{}
		}
		normalized[key] = u
	}
	doc.Users = normalized
	if len(doc.Users) == 0 {
		doc.Users = SeedUsers()
	}

	if doc.Categories == nil {
		doc.Categories = SeedCategories()
	}

	if doc.Tasks == nil {
		doc.Tasks = []*Task{}
	}
	tasks := doc.Tasks[:0]
	for _, t := range doc.Tasks {
		if t == nil {
			continue
		}
		if t.Type != TaskTypeExam && t.Type != TaskTypeGeneral {
			if t.Category == ExamCategory {
				t.Type = TaskTypeExam
			} else {
				t.Type = TaskTypeGeneral
			}
		}
		tasks = append(tasks, t)
	}
	doc.Tasks = tasks

	if doc.NextTaskID < 1 {
		doc.NextTaskID = 1
	}
	for _, t := range doc.Tasks {
		if t.ID >= doc.NextTaskID {
			doc.NextTaskID = t.ID + 1
		}
	}

	return doc
}

// Clone returns a private deep copy, the working document handed to
// mutators.
func (d *AppDocument) Clone() *AppDocument {
	data, err := json.Marshal(d)
	if err != nil {
		// The document is plain data; marshalling cannot fail in practice.
		return SeedDocument()
	}
	dup := &AppDocument{}
	if err := json.Unmarshal(data, dup); err != nil {
		return SeedDocument()
	}
	return Normalize(dup)
}

// Sanitized returns a deep copy safe to send to clients: passwords are
// stripped, everything else is intact.
func (d *AppDocument) Sanitized() *AppDocument {
	out := d.Clone()
	for _, u := range out.Users {
		u.Password = ""
	}
	return out
}
