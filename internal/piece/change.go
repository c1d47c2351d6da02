package piece

import (
	"encoding/json"
	"fmt"
)

// Op names the kind of a Change on the wire.
type Op string

const (
	OpAdd    Op = "add"
	OpModify Op = "modify"
	OpDelete Op = "delete"
)

// Change is one server-bound operation: AddChange, ModifyChange or
// DeleteChange.
type Change interface {
	Op() Op
	isChange()
}

// Values are the line fields carried by add and modify operations.
type Values struct {
	Date        string `json:"date"`
	AccNum      string `json:"accnum"`
	AccLib      string `json:"acclib"`
	Lib         string `json:"lib"`
	DebitCents  int64  `json:"debit_cents"`
	CreditCents int64  `json:"credit_cents"`
}

type AddChange struct {
	Values
}

type ModifyChange struct {
	EntryID int64
	Values
}

type DeleteChange struct {
	EntryID int64
}

func (AddChange) Op() Op    { return OpAdd }
func (ModifyChange) Op() Op { return OpModify }
func (DeleteChange) Op() Op { return OpDelete }

func (AddChange) isChange()    {}
func (ModifyChange) isChange() {}
func (DeleteChange) isChange() {}

// wireChange is the flat JSON form of every Change variant.
type wireChange struct {
	Op      Op     `json:"op"`
	EntryID *int64 `json:"entry_id,omitempty"`
	*Values
}

func (c AddChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireChange{Op: OpAdd, Values: &c.Values})
}

func (c ModifyChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireChange{Op: OpModify, EntryID: &c.EntryID, Values: &c.Values})
}

func (c DeleteChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireChange{Op: OpDelete, EntryID: &c.EntryID})
}

// Changes is an ordered change list that can be decoded from JSON.
type Changes []Change

func (cs *Changes) UnmarshalJSON(data []byte) error {
	var raw []wireChange
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Changes, 0, len(raw))

	for i, w := range raw {
		c, err := w.change()
		if err != nil {
			return fmt.Errorf("change %d: %w", i, err)
		}

		out = append(out, c)
	}

	*cs = out

	return nil
}

func (w wireChange) change() (Change, error) {
	var v Values
	if w.Values != nil {
		v = *w.Values
	}

	switch w.Op {
	case OpAdd:
		return AddChange{Values: v}, nil
	case OpModify:
		if w.EntryID == nil {
			return nil, fmt.Errorf("modify: missing entry_id")
		}

		return ModifyChange{EntryID: *w.EntryID, Values: v}, nil
	case OpDelete:
		if w.EntryID == nil {
			return nil, fmt.Errorf("delete: missing entry_id")
		}

		return DeleteChange{EntryID: *w.EntryID}, nil
	}

	return nil, fmt.Errorf("unknown op %q", w.Op)
}
