package sourcedata

import (
	"encoding/json"
	"fmt"
)

const typeKey = "type"

// Unknown preserves an item whose type tag this release does not know,
// carrying the raw payload through load/save cycles untouched. It exposes
// no capabilities and never wins a priority pick.
type Unknown struct {
	Tag string
	Raw json.RawMessage
}

func (u *Unknown) Type() string        { return u.Tag }
func (u *Unknown) Priority() int       { return 0 }
func (u *Unknown) SourceTitle() string { return "" }
func (u *Unknown) Merge(Item)          {}

var _ Item = (*Unknown)(nil)

func newByType(tag string) Item {
	switch tag {
	case TypeSteamInfo:
		return &SteamInfo{}
	case TypeIGDB:
		return &IGDB{}
	case TypeCryoTank:
		return &CryoTank{}
	case TypeSalenauts:
		return &Salenauts{}
	case TypeUser:
		return &User{}
	default:
		return nil
	}
}

// MarshalItem serializes an item with its type tag injected, so the
// variant can be reconstructed on load.
func MarshalItem(item Item) ([]byte, error) {
	if u, ok := item.(*Unknown); ok {
		return u.Raw, nil
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("marshal %s item: %w", item.Type(), err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("reshape %s item: %w", item.Type(), err)
	}
	tag, err := json.Marshal(item.Type())
	if err != nil {
		return nil, err
	}
	fields[typeKey] = tag
	return json.Marshal(fields)
}

// UnmarshalItem reconstructs an item from its tagged serialized form.
// Unrecognized type tags yield an Unknown wrapper instead of an error, so
// files written by a newer release survive a round trip.
func UnmarshalItem(data []byte) (Item, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("read item type tag: %w", err)
	}
	if head.Type == "" {
		return nil, fmt.Errorf("item has no type tag")
	}
	item := newByType(head.Type)
	if item == nil {
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return &Unknown{Tag: head.Type, Raw: raw}, nil
	}
	if err := json.Unmarshal(data, item); err != nil {
		return nil, fmt.Errorf("decode %s item: %w", head.Type, err)
	}
	return item, nil
}

// Items is the set of provider payloads attached to one game record, at
// most one per provider type.
type Items []Item

func (items Items) MarshalJSON() ([]byte, error) {
	encoded := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		data, err := MarshalItem(item)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, data)
	}
	return json.Marshal(encoded)
}

func (items *Items) UnmarshalJSON(data []byte) error {
	var encoded []json.RawMessage
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	decoded := make(Items, 0, len(encoded))
	for _, raw := range encoded {
		item, err := UnmarshalItem(raw)
		if err != nil {
			return err
		}
		decoded = append(decoded, item)
	}
	*items = decoded
	return nil
}

// ByType returns the item with the given type tag, or nil.
func (items Items) ByType(tag string) Item {
	for _, item := range items {
		if item.Type() == tag {
			return item
		}
	}
	return nil
}

// Upsert adds the item, or merges it into an existing item of the same
// type. The one-item-per-type invariant holds either way. Reports whether
// a new item was added.
func (items *Items) Upsert(item Item) bool {
	for _, existing := range *items {
		if existing.Type() == item.Type() {
			existing.Merge(item)
			return false
		}
	}
	*items = append(*items, item)
	return true
}
